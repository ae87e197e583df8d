package patch

import "strconv"

// Compile converts spec into a filter graph. It returns nil exactly when the
// spec is empty.
func Compile(spec Spec) *Graph {
	if spec.IsEmpty() {
		return nil
	}

	graph := &Graph{Filters: make([]Filter, 0, 5)}

	if trim := spec.Trim; trim != nil && (trim.StartMs != nil || trim.EndMs != nil) {
		f := Filter{Name: "atrim"}
		if trim.StartMs != nil {
			f.Params = append(f.Params, Param{Key: "start", Value: ms(*trim.StartMs)})
		}
		if trim.EndMs != nil {
			f.Params = append(f.Params, Param{Key: "end", Value: ms(*trim.EndMs)})
		}
		graph.Filters = append(graph.Filters, f)
	}
	if spec.FadeIn != nil {
		graph.Filters = append(graph.Filters, fadeFilter("in", *spec.FadeIn))
	}
	if spec.FadeOut != nil {
		graph.Filters = append(graph.Filters, fadeFilter("out", *spec.FadeOut))
	}
	if spec.DelayStartMs != nil {
		// One value per channel; masters are stereo.
		delay := strconv.Itoa(*spec.DelayStartMs)
		graph.Filters = append(graph.Filters, Filter{
			Name:   "adelay",
			Params: []Param{{Key: "delays", Value: delay + "|" + delay}},
		})
	}
	if spec.PadEndMs != nil {
		graph.Filters = append(graph.Filters, Filter{
			Name:   "apad",
			Params: []Param{{Key: "pad_dur", Value: ms(*spec.PadEndMs)}},
		})
	}

	return graph
}

func fadeFilter(direction string, fade Fade) Filter {
	return Filter{
		Name: "afade",
		Params: []Param{
			{Key: "t", Value: direction},
			{Key: "st", Value: ms(fade.StartMs)},
			{Key: "d", Value: ms(fade.DurationMs)},
		},
	}
}
