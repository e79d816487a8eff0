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

// Package charts turns view state plus loaded CDS data into scenes. One
// pipeline serves all four charts; what differs between them is declared in
// Options.
package charts

import (
	"bytes"
	_ "embed"
	"fmt"
	"text/template"
	"time"

	"gopkg.in/yaml.v3"

	"ivy-charts/internal/aggregate"
	"ivy-charts/internal/scale"
)

type Kind string

const (
	KindLine   Kind = "line"
	KindMirror Kind = "mirror"
	KindAid    Kind = "aid"
	KindRadial Kind = "radial"
)

type Margin struct {
	Top    float64 `yaml:"top" json:"top"`
	Right  float64 `yaml:"right" json:"right"`
	Bottom float64 `yaml:"bottom" json:"bottom"`
	Left   float64 `yaml:"left" json:"left"`
}

// Breakpoint sizes a chart for one class of container width.
type Breakpoint struct {
	Margin Margin `yaml:"margin"`
	// Height is the outer height of the drawing.
	Height float64 `yaml:"height"`
	// Gutter is taken off the container width before the margins.
	Gutter float64 `yaml:"gutter"`
	// MaxWidth caps the outer width, 0 means no cap.
	MaxWidth float64 `yaml:"maxWidth"`
	// radial only
	InnerRadius float64 `yaml:"innerRadius"`
	RadiusInset float64 `yaml:"radiusInset"`
	FontSize    float64 `yaml:"fontSize"`
}

// Options declares one chart.
type Options struct {
	Name     string `yaml:"name"`
	Kind     Kind   `yaml:"kind"`
	Title    string `yaml:"title"`
	Selector string `yaml:"selector"`
	// Width is the container width used when the caller does not pass one.
	Width float64 `yaml:"width"`

	Desktop Breakpoint `yaml:"desktop"`
	Mobile  Breakpoint `yaml:"mobile"`
	Small   Breakpoint `yaml:"small"`

	Metric   aggregate.Metric `yaml:"metric"`
	Domain   scale.DomainMode `yaml:"domain"`
	Padding  float64          `yaml:"padding"`
	Ticks    int              `yaml:"ticks"`
	Duration time.Duration    `yaml:"duration"`
	// Year is the snapshot year shown before the user picks one.
	Year string `yaml:"year"`

	// Colors overrides school colours by key; mirror charts also read
	// "admitted" and "enrolled".
	Colors map[string]string `yaml:"colors"`

	XLabel   string `yaml:"xLabel"`
	YLabel   string `yaml:"yLabel"`
	Footnote string `yaml:"footnote"`
	Caption  string `yaml:"caption"`

	// Tooltip and PinLabel are text/template sources executed against a Tip.
	Tooltip  string `yaml:"tooltip"`
	PinLabel string `yaml:"pinLabel"`
}

func (o Options) Validate() error {
	if o.Name == "" {
		return fmt.Errorf("chart without a name")
	}
	switch o.Kind {
	case KindLine, KindMirror, KindAid, KindRadial:
	default:
		return fmt.Errorf("chart %s: unknown kind %q", o.Name, o.Kind)
	}
	if err := o.Domain.Validate(); err != nil {
		return fmt.Errorf("chart %s: %w", o.Name, err)
	}
	if (o.Kind == KindLine || o.Kind == KindRadial) && len(o.Metric.Fields) == 0 {
		return fmt.Errorf("chart %s: %s chart needs metric fields", o.Name, o.Kind)
	}
	if o.Duration < 0 {
		return fmt.Errorf("chart %s: negative duration", o.Name)
	}
	return nil
}

//go:embed defaults.yaml
var defaultsYAML []byte

// Defaults returns the built-in chart declarations.
func Defaults() ([]Options, error) {
	var doc struct {
		Charts []Options `yaml:"charts"`
	}
	dec := yaml.NewDecoder(bytes.NewReader(defaultsYAML))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parsing built-in charts: %w", err)
	}
	return doc.Charts, nil
}

// Tip is what tooltip and pin label templates see.
type Tip struct {
	School  string
	Short   string
	Year    string
	Value   float64
	Defined bool

	Admitted int
	Enrolled int
	Yield    float64

	Aid        float64
	PctNeedMet float64
	HasPct     bool
}

var funcs = template.FuncMap{
	"comma": comma,
	"kilo":  func(v float64) float64 { return v / 1000 },
	"pct":   func(v float64) float64 { return v * 100 },
}

func parseTemplate(name, src string) (*template.Template, error) {
	if src == "" {
		return nil, nil
	}
	return template.New(name).Funcs(funcs).Option("missingkey=error").Parse(src)
}

func execute(t *template.Template, tip Tip) string {
	if t == nil {
		return ""
	}
	var b bytes.Buffer
	if err := t.Execute(&b, tip); err != nil {
		return tip.School
	}
	return b.String()
}
