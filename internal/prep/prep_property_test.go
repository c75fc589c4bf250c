package prep

import (
	"fmt"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestAssembleProperties checks recombination over random interleavings of
// markup and script regions.
func TestAssembleProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	// Property: every body comes back exactly once, in document order, and
	// the markup between regions is untouched.
	properties.Property("regions recombine in order", prop.ForAll(
		func(texts, bodies []string, tail string) bool {
			n := min(len(texts), len(bodies))

			var markup, want strings.Builder
			want.WriteString("[m]")
			for i := 0; i < n; i++ {
				body := fmt.Sprintf("r%d:%s", i, bodies[i])
				markup.WriteString(texts[i] + "<script>" + body + "</script>")
				want.WriteString(texts[i] + "<script><s>" + body + "</s></script>")
			}
			markup.WriteString(tail)
			want.WriteString(tail + "[/m]")

			res, err := NewAssembler(&fakeHighlighter{}).Assemble(markup.String(), nil, nil)
			if err != nil {
				return false
			}
			return res.HighlightedMarkup == want.String()
		},
		gen.SliceOf(gen.RegexMatch(`^[a-z0-9 .=;]{0,12}$`)),
		gen.SliceOf(gen.RegexMatch(`^[a-z0-9 ();.+]{0,12}$`)),
		gen.RegexMatch(`^[a-z0-9 .]{0,8}$`),
	))

	// Property: stripping leaves exactly the script tags, one pair per region.
	properties.Property("stripped markup keeps empty tags", prop.ForAll(
		func(bodies []string) bool {
			var markup strings.Builder
			for _, body := range bodies {
				markup.WriteString("<p>x</p><script>" + body + "</script>")
			}

			res, err := NewAssembler(&fakeHighlighter{}).Assemble(markup.String()+"end", nil, nil)
			if err != nil || res.StrippedMarkup == nil {
				return false
			}
			return *res.StrippedMarkup == strings.Repeat("<p>x</p><script></script>", len(bodies))+"end"
		},
		gen.SliceOf(gen.RegexMatch(`^[a-z0-9 ();.]{0,12}$`)),
	))

	properties.TestingRun(t)
}
