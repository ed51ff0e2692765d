package islet

import "errors"

// ElementResult records how one mount point came out of a render pass.
// State is what the renderer wrote to the element; Err carries the failure
// behind StateFailed, or the boundary-contained error of a StateMounted
// element whose component broke during render (the fallback is mounted and
// tracked, but the failure is still reported).
type ElementResult struct {
	ElementID string
	Component string
	State     State
	Err       error
}

// Report accumulates per-element results for one RenderAll pass, in
// document order. Elements in StateLoading complete asynchronously after
// the report is returned; use Renderer.Flush to drain them.
//
// A Report belongs to the goroutine that drove the pass.
type Report struct {
	results []ElementResult
}

func (r *Report) add(res ElementResult) {
	r.results = append(r.results, res)
}

// Results returns the per-element results in document order.
func (r *Report) Results() []ElementResult {
	return r.results
}

// Len returns the number of mount points the pass touched.
func (r *Report) Len() int {
	return len(r.results)
}

// Count returns how many elements finished the pass in the given state.
func (r *Report) Count(s State) int {
	n := 0
	for _, res := range r.results {
		if res.State == s {
			n++
		}
	}
	return n
}

// Failed returns every result carrying an error, whatever its state.
func (r *Report) Failed() []ElementResult {
	var out []ElementResult
	for _, res := range r.results {
		if res.Err != nil {
			out = append(out, res)
		}
	}
	return out
}

// ByID returns the result for one element id.
func (r *Report) ByID(elementID string) (ElementResult, bool) {
	for _, res := range r.results {
		if res.ElementID == elementID {
			return res, true
		}
	}
	return ElementResult{}, false
}

// Err joins the errors of all failed elements, nil when the pass was clean.
func (r *Report) Err() error {
	var errs []error
	for _, res := range r.results {
		if res.Err != nil {
			errs = append(errs, res.Err)
		}
	}
	return errors.Join(errs...)
}
