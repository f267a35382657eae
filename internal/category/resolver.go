package category

import "tally/internal/core"

// View is presentation-ready category metadata. Builtin distinguishes
// catalog entries from owner-defined ones explicitly, rather than by id
// collision avoidance.
type View struct {
	ID      string    `json:"id"`
	Kind    core.Kind `json:"kind"`
	Name    string    `json:"name"`
	Icon    string    `json:"icon"`
	Color   string    `json:"color"`
	Builtin bool      `json:"builtin"`
}

func viewOf(c core.Category) View {
	v := View{ID: c.ID, Kind: c.Kind, Name: c.Name, Icon: c.Icon, Color: c.Color}
	if v.Icon == "" {
		v.Icon = FallbackIcon
	}
	if v.Color == "" {
		v.Color = FallbackColor
	}
	return v
}

// Resolve maps a category id to display metadata. Custom categories win,
// then the built-in catalog for kind, then a synthetic fallback carrying the
// original id. It never fails; a deleted category's id resolves to the
// fallback while its transactions stay fully visible.
func Resolve(id string, kind core.Kind, custom []core.Category) View {
	for _, c := range custom {
		if c.ID == id {
			return viewOf(c)
		}
	}
	for _, v := range BuiltinDefaults(kind) {
		if v.ID == id {
			return v
		}
	}
	return View{ID: id, Kind: kind, Name: FallbackName, Icon: FallbackIcon, Color: FallbackColor}
}

// EffectiveList returns the categories to offer for kind: the owner's custom
// ones when any exist, otherwise the built-in defaults. Input order of the
// custom list is preserved; it also keys category-based aggregation.
func EffectiveList(kind core.Kind, custom []core.Category) []View {
	var views []View
	for _, c := range custom {
		if c.Kind != kind {
			continue
		}
		views = append(views, viewOf(c))
	}
	if len(views) > 0 {
		return views
	}
	return BuiltinDefaults(kind)
}
