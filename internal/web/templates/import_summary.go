package templates

import (
	"context"
	"fmt"
	"io"

	"github.com/JonMunkholm/stockimport/internal/core"
	"github.com/a-h/templ"
)

// ImportSummary renders an import's current phase: the pending decision
// with its answer buttons, or the final result.
func ImportSummary(state *core.ImportState) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := newPrinter(w)
		p.raw(`<section class="import-summary" id="import-` + templ.EscapeString(state.ID) + `">`)
		p.tag("h2", "import-source", state.Source)
		p.tag("p", "import-phase", string(state.Phase))

		switch {
		case state.Phase == core.PhaseAborted:
			p.tag("p", "import-headline", state.Summary())
		case state.Result != nil:
			renderResult(p, state.Result)
		default:
			if req := state.Pending(); req != nil {
				renderDecision(p, state.ID, req)
			} else if state.Phase == core.PhaseReadyToCommit {
				p.raw(`<button hx-post="/api/imports/` + templ.EscapeString(state.ID) + `/commit" hx-target="closest section" hx-swap="outerHTML">Commit import</button>`)
			}
		}

		p.raw(`</section>`)
		return p.err
	})
}

func renderDecision(p *printer, id string, req *core.DecisionRequest) {
	base := "/api/imports/" + templ.EscapeString(id)

	switch req.Kind {
	case core.DecisionDuplicatePolicy:
		p.tag("p", "import-question",
			fmt.Sprintf("%d rows match items that already exist. Skip them or add their quantities?", len(req.Duplicates)))
		p.raw(`<table class="duplicates"><thead><tr><th>Line</th><th>SKU</th><th>Existing item</th><th>Quantity in file</th></tr></thead><tbody>`)
		for _, d := range req.Duplicates {
			p.raw("<tr>")
			p.tag("td", "", fmt.Sprint(d.Line))
			p.tag("td", "", d.SKU)
			p.tag("td", "", d.ItemName)
			p.tag("td", "", fmt.Sprint(d.CSVQuantity))
			p.raw("</tr>")
		}
		p.raw(`</tbody></table>`)
		p.raw(`<button hx-post="` + base + `/duplicates" hx-vals='{"policy":"skip"}' hx-target="closest section" hx-swap="outerHTML">Skip duplicates</button>`)
		p.raw(`<button hx-post="` + base + `/duplicates" hx-vals='{"policy":"merge"}' hx-target="closest section" hx-swap="outerHTML">Merge quantities</button>`)

	case core.DecisionLocationConfirmation:
		p.tag("p", "import-question", "These locations are new. Add them and continue?")
		p.raw(`<ul class="locations">`)
		for _, loc := range req.Locations {
			p.tag("li", "", loc)
		}
		p.raw(`</ul>`)
		p.raw(`<button hx-post="` + base + `/locations" hx-vals='{"confirm":"true"}' hx-target="closest section" hx-swap="outerHTML">Add locations</button>`)
		p.raw(`<button hx-post="` + base + `/locations" hx-vals='{"confirm":"false"}' hx-target="closest section" hx-swap="outerHTML">Cancel import</button>`)
	}
}

func renderResult(p *printer, res *core.Result) {
	p.tag("p", "import-headline", res.Headline())
	p.raw(`<dl class="import-counts">`)
	for _, c := range []struct {
		label string
		n     int
	}{
		{"Created", res.Created},
		{"Merged", res.Merged},
		{"Skipped", res.Skipped},
		{"Invalid", res.Invalid},
		{"Failed", res.WriteFailures + res.ReferenceFailures},
	} {
		p.tag("dt", "", c.label)
		p.tag("dd", "", fmt.Sprint(c.n))
	}
	p.raw(`</dl>`)

	if res.ErrorCount == 1 {
		return
	}
	if len(res.ErrorMessages) > 0 {
		p.raw(`<ul class="import-errors">`)
		for _, msg := range res.ErrorMessages {
			p.tag("li", "", msg)
		}
		p.raw(`</ul>`)
	}
}
