package drawer

import (
	"fmt"
	"io"
	"os"
	"sort"
	"text/template"
	"time"

	"github.com/dominikbraun/graph"
	"github.com/pkg/errors"
	"gopkg.in/go-playground/colors.v1" //nolint

	"github.com/nmendiboure/hicstuff/internal/store"
	"github.com/nmendiboure/hicstuff/pkg/pipeline/measure"
)

// DOTDrawer writes the pipeline graph as a Graphviz DOT file.
type DOTDrawer struct {
	store    store.CustomStore[string, string]
	graph    graph.Graph[string, string]
	fileName string
}

// NewDOTDrawer creates a drawer writing to fileName.
func NewDOTDrawer(fileName string) *DOTDrawer {
	st := store.NewMemoryStore[string, string]()

	return &DOTDrawer{
		store:    st,
		graph:    graph.NewWithStore(graph.StringHash, graph.Store[string, string](st), graph.Directed()),
		fileName: fileName,
	}
}

// AddStep adds a step to the pipeline graph.
func (d *DOTDrawer) AddStep(name string) error {
	err := d.graph.AddVertex(name)
	if err != nil {
		return errors.Wrapf(err, "unable to add vertex %s", name)
	}

	return nil
}

// AddLink adds a link between parent and children steps.
func (d *DOTDrawer) AddLink(parentName, childrenName string) error {
	err := d.graph.AddEdge(parentName, childrenName)
	if err != nil && !errors.Is(err, graph.ErrEdgeAlreadyExists) {
		return errors.Wrapf(err, "unable to add edge from %s to %s", parentName, childrenName)
	}

	return nil
}

// Draw writes the DOT file.
func (d *DOTDrawer) Draw() error {
	file, err := os.Create(d.fileName)
	if err != nil {
		return errors.Wrapf(err, "unable to create file %s", d.fileName)
	}
	defer file.Close()

	err = Render(d.graph, file)
	if err != nil {
		return errors.Wrapf(err, "unable to write dot file %s", d.fileName)
	}

	return nil
}

func (d *DOTDrawer) setLabel(stepName, label string) error {
	if _, err := d.graph.Vertex(stepName); err != nil {
		return errors.Wrapf(err, "unable to get vertex %s", stepName)
	}

	d.store.UpdateVertex(stepName, func(p *graph.VertexProperties) {
		if p.Attributes == nil {
			p.Attributes = make(map[string]string)
		}

		if prev, ok := p.Attributes["xlabel"]; ok && prev != "" {
			label = prev + ", " + label
		}

		p.Attributes["xlabel"] = label
	})

	return nil
}

// SetTotalTime labels the step with the time elapsed since startTime.
func (d *DOTDrawer) SetTotalTime(stepName string, startTime time.Time) error {
	return d.setLabel(stepName, time.Since(startTime).Round(time.Millisecond).String())
}

const maxRGB = 240

// edgeColours maps each distinct average transport duration to a colour going from blue (fastest)
// to red (slowest).
func edgeColours(msr measure.Measure) (map[time.Duration]string, error) {
	distinct := make(map[time.Duration]string)
	sorted := []time.Duration{}

	for _, step := range msr.AllMetrics() {
		for _, info := range step.AVGTransportDuration() {
			if info.Elapsed == 0 {
				continue
			}

			if _, ok := distinct[info.Elapsed]; ok {
				continue
			}

			distinct[info.Elapsed] = ""
			sorted = append(sorted, info.Elapsed)
		}
	}

	if len(sorted) == 0 {
		return distinct, nil
	}

	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i] > sorted[j]
	})

	maxValue := sorted[0]
	minValue := sorted[len(sorted)-1]

	for curr := range distinct {
		fraction := 1.0
		if maxValue > minValue {
			fraction = float64(curr-minValue) / float64(maxValue-minValue)
		}

		red := maxRGB * fraction
		blue := maxRGB - red

		colour, err := colors.RGB(uint8(red), 0, uint8(blue)) //nolint
		if err != nil {
			return nil, errors.Wrap(err, "unable to get colour")
		}

		distinct[curr] = colour.ToHEX().String()
	}

	return distinct, nil
}

// AddMeasure annotates steps and edges with the measured durations.
func (d *DOTDrawer) AddMeasure(msr measure.Measure) error {
	colours, err := edgeColours(msr)
	if err != nil {
		return err
	}

	for name, step := range msr.AllMetrics() {
		if _, err := d.graph.Vertex(name); err != nil {
			continue
		}

		if avg := step.AVGDuration(); avg != 0 {
			err := d.setLabel(name, fmt.Sprintf("%s x%d", avg, step.Count()))
			if err != nil {
				return err
			}
		}

		if step.GetTotalDuration() > 0 {
			err := d.setLabel(name, "end: "+step.GetTotalDuration().Round(time.Millisecond).String())
			if err != nil {
				return err
			}
		}

		for inputStep, info := range step.AVGTransportDuration() {
			if info.Elapsed == 0 {
				continue
			}

			err := d.graph.UpdateEdge(inputStep, name,
				graph.EdgeAttribute("label", info.Elapsed.String()),
				graph.EdgeAttribute("fontcolor", "blue"),
				graph.EdgeAttribute("color", colours[info.Elapsed]),
			)
			if err != nil && !errors.Is(err, graph.ErrEdgeNotFound) {
				return errors.Wrap(err, "unable to update edge")
			}
		}
	}

	return nil
}

//nolint:lll //this is a template
const dotTemplate = `strict {{.GraphType}} {
	{{range $k, $v := .Attributes}}
		{{$k}}="{{$v}}";
	{{end}}
	{{range $s := .Statements}}
		"{{.Source}}" {{if .Target}}{{$.EdgeOperator}} "{{.Target}}" [ {{range $k, $v := .EdgeAttributes}}{{$k}}="{{$v}}", {{end}} weight={{.EdgeWeight}} ]{{else}}[ {{range $k, $v := .HTMLAttributes}}{{$k}}={{$v}}, {{end}} {{range $k, $v := .SourceAttributes}}{{$k}}="{{$v}}", {{end}} weight={{.SourceWeight}} ]{{end}};
	{{end}}
	}
	`

type description struct {
	GraphType    string
	Attributes   map[string]string
	EdgeOperator string
	Statements   []statement
}

type statement struct {
	Source           interface{}
	Target           interface{}
	SourceAttributes map[string]string
	HTMLAttributes   map[string]string
	EdgeAttributes   map[string]string
	SourceWeight     int
	EdgeWeight       int
}

// Render writes g in DOT format. Vertices are emitted in a stable order.
func Render[K comparable, T any](g graph.Graph[K, T], wrt io.Writer, options ...func(*description)) error {
	desc, err := generateDOT(g, options...)
	if err != nil {
		return fmt.Errorf("failed to generate DOT description: %w", err)
	}

	return renderDOT(wrt, desc)
}

// GraphAttribute is a functional option for Render.
func GraphAttribute(key, value string) func(*description) {
	return func(d *description) {
		d.Attributes[key] = value
	}
}

func sortedKeys[K comparable, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Slice(keys, func(i, j int) bool {
		return fmt.Sprint(keys[i]) < fmt.Sprint(keys[j])
	})

	return keys
}

func generateDOT[K comparable, T any](gra graph.Graph[K, T], options ...func(*description)) (description, error) {
	desc := description{
		GraphType:    "graph",
		Attributes:   make(map[string]string),
		EdgeOperator: "--",
		Statements:   make([]statement, 0),
	}

	for _, option := range options {
		option(&desc)
	}

	if gra.Traits().IsDirected {
		desc.GraphType = "digraph"
		desc.EdgeOperator = "->"
	}

	adjacencyMap, err := gra.AdjacencyMap()
	if err != nil {
		return desc, errors.Wrap(err, "unable to get adjacency map")
	}

	for _, vertex := range sortedKeys(adjacencyMap) {
		adjacencies := adjacencyMap[vertex]

		_, sourceProperties, err := gra.VertexWithProperties(vertex)
		if err != nil {
			return desc, errors.Wrap(err, "unable to get vertex properties")
		}

		htmlAttributes := make(map[string]string)
		sourceAttributes := make(map[string]string, len(sourceProperties.Attributes))

		for k, v := range sourceProperties.Attributes {
			if k == "xlabel" {
				htmlAttributes["label"] = fmt.Sprintf(`<%+v <BR /> <FONT POINT-SIZE="12">%s</FONT>>`, vertex, v)

				continue
			}

			sourceAttributes[k] = v
		}

		desc.Statements = append(desc.Statements, statement{
			Source:           vertex,
			SourceWeight:     sourceProperties.Weight,
			SourceAttributes: sourceAttributes,
			HTMLAttributes:   htmlAttributes,
		})

		for _, adjacency := range sortedKeys(adjacencies) {
			edge := adjacencies[adjacency]
			desc.Statements = append(desc.Statements, statement{
				Source:         vertex,
				Target:         adjacency,
				EdgeWeight:     edge.Properties.Weight,
				EdgeAttributes: edge.Properties.Attributes,
			})
		}
	}

	return desc, nil
}

func renderDOT(wrt io.Writer, desc description) error {
	tpl, err := template.New("dotTemplate").Parse(dotTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	err = tpl.Execute(wrt, desc)
	if err != nil {
		return errors.Wrap(err, "unable to execute template")
	}

	return nil
}

var _ Drawer = (*DOTDrawer)(nil)
