/*
   Copyright (C) 2023 eLife Sciences

   This program is free software: you can redistribute it and/or modify
   it under the terms of the GNU Affero General Public License as
   published by the Free Software Foundation, either version 3 of the
   License, or (at your option) any later version.

   This program is distributed in the hope that it will be useful,
   but WITHOUT ANY WARRANTY; without even the implied warranty of
   MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
   GNU Affero General Public License for more details.

   You should have received a copy of the GNU Affero General Public License
   along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

package scene

type Op int

const (
	Stable Op = iota
	Enter
	Update
	Exit
)

func (op Op) String() string {
	switch op {
	case Enter:
		return "enter"
	case Update:
		return "update"
	case Exit:
		return "exit"
	}
	return "stable"
}

// animated string attributes; everything else in Style is applied immediately.
var animatedStyle = []string{"fill", "stroke"}

// Change describes how one element of the next scene gets from where it was to
// where it should be. From/To only carry attributes that actually move.
type Change struct {
	Key      string            `json:"key"`
	Op       Op                `json:"op"`
	From     Attrs             `json:"from,omitempty"`
	To       Attrs             `json:"to,omitempty"`
	FromText map[string]string `json:"fromText,omitempty"`
	ToText   map[string]string `json:"toText,omitempty"`
}

// Animated reports whether anything in the change needs interpolating.
func (c Change) Animated() bool {
	return len(c.To) > 0 || len(c.ToText) > 0
}

// Plan is the reconciliation of a previous scene with the next one.
type Plan struct {
	Changes map[string]Change `json:"changes"`
	// Exits are the keys of previous elements that are gone; they are not drawn.
	Exits []string `json:"exits"`
}

func (p Plan) Op(key string) Op {
	if c, ok := p.Changes[key]; ok {
		return c.Op
	}
	for _, k := range p.Exits {
		if k == key {
			return Exit
		}
	}
	return Stable
}

// Count returns how many changes of kind `op` the plan holds.
func (p Plan) Count(op Op) int {
	if op == Exit {
		return len(p.Exits)
	}
	n := 0
	for _, c := range p.Changes {
		if c.Op == op {
			n++
		}
	}
	return n
}

// Diff reconciles `prev` (nil on first render) with `next` by element key:
// new keys enter from their neutral Enter state, kept keys interpolate whatever
// changed, and keys missing from next exit.
func Diff(prev, next *Scene) Plan {
	plan := Plan{Changes: map[string]Change{}}
	old := map[string]Element{}
	if prev != nil {
		for _, e := range prev.Elements {
			old[e.Key] = e
		}
	}

	for _, e := range next.Elements {
		before, existed := old[e.Key]
		var c Change
		if !existed {
			c = enter(e)
		} else {
			c = update(before, e)
		}
		plan.Changes[e.Key] = c
	}

	if prev != nil {
		current := map[string]bool{}
		for _, e := range next.Elements {
			current[e.Key] = true
		}
		for _, e := range prev.Elements {
			if !current[e.Key] {
				plan.Exits = append(plan.Exits, e.Key)
			}
		}
	}
	return plan
}

func enter(e Element) Change {
	c := Change{Key: e.Key, Op: Enter}
	for name, start := range e.Enter {
		end, ok := e.Attrs[name]
		if !ok || end == start {
			continue
		}
		if c.From == nil {
			c.From, c.To = Attrs{}, Attrs{}
		}
		c.From[name] = start
		c.To[name] = end
	}
	return c
}

func update(before, after Element) Change {
	c := Change{Key: after.Key, Op: Stable}
	for name, end := range after.Attrs {
		start, ok := before.Attrs[name]
		if !ok || start == end {
			continue
		}
		if c.From == nil {
			c.From, c.To = Attrs{}, Attrs{}
		}
		c.From[name] = start
		c.To[name] = end
	}

	text := func(name, start, end string) {
		if start == "" || end == "" || start == end {
			return
		}
		if c.FromText == nil {
			c.FromText, c.ToText = map[string]string{}, map[string]string{}
		}
		c.FromText[name] = start
		c.ToText[name] = end
	}
	if after.Kind == Path {
		text("d", before.Path, after.Path)
	}
	for _, name := range animatedStyle {
		text(name, before.Style[name], after.Style[name])
	}

	if c.Animated() || after.Text != before.Text || !sameStyle(before.Style, after.Style) {
		c.Op = Update
	}
	return c
}

func sameStyle(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}
