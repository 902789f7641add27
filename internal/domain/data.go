package domain

// NodeData is the type-tagged payload of a node. The set of variants is
// closed: SphereData, BoxData, LightData and RenderData.
type NodeData interface {
	Kind() NodeKind
	nodeData() // marker method restricting implementations to this package
}

// SphereData is the payload of a Sphere node
type SphereData struct {
	Color string `json:"color" yaml:"color"` // CSS color value
}

func (SphereData) Kind() NodeKind { return KindSphere }
func (SphereData) nodeData()      {}

// BoxData is the payload of a Box node
type BoxData struct {
	Color string `json:"color" yaml:"color"`
}

func (BoxData) Kind() NodeKind { return KindBox }
func (BoxData) nodeData()      {}

// LightData is the payload of a Light node
type LightData struct {
	Intensity float64 `json:"intensity" yaml:"intensity"`
}

func (LightData) Kind() NodeKind { return KindLight }
func (LightData) nodeData()      {}

// RenderData is the derived payload of a Render node: the sources of the
// edges currently plugged into its geometry and light inputs, in edge order.
type RenderData struct {
	GeometryIDs []string `json:"geometryIds" yaml:"geometryIds"`
	LightIDs    []string `json:"lightIds" yaml:"lightIds"`
}

func (RenderData) Kind() NodeKind { return KindRender }
func (RenderData) nodeData()      {}

// Default palette used when a node is added without initial data
const (
	DefaultSphereColor    = "orange"
	DefaultBoxColor       = "mediumpurple"
	DefaultLightIntensity = 1.0
)

// DefaultData returns the payload a freshly added node of the given kind carries
func DefaultData(kind NodeKind) NodeData {
	switch kind {
	case KindSphere:
		return SphereData{Color: DefaultSphereColor}
	case KindBox:
		return BoxData{Color: DefaultBoxColor}
	case KindLight:
		return LightData{Intensity: DefaultLightIntensity}
	case KindRender:
		return RenderData{GeometryIDs: []string{}, LightIDs: []string{}}
	default:
		return nil
	}
}

// DecodeData builds the variant for kind and fills it with decode.
// It is shared by the JSON and YAML decoders.
func DecodeData(kind NodeKind, decode func(target any) error) (NodeData, error) {
	switch kind {
	case KindSphere:
		var d SphereData
		if err := decode(&d); err != nil {
			return nil, err
		}
		return d, nil
	case KindBox:
		var d BoxData
		if err := decode(&d); err != nil {
			return nil, err
		}
		return d, nil
	case KindLight:
		var d LightData
		if err := decode(&d); err != nil {
			return nil, err
		}
		return d, nil
	case KindRender:
		var d RenderData
		if err := decode(&d); err != nil {
			return nil, err
		}
		return normalizeData(d), nil
	default:
		return nil, errUnknownKind(kind)
	}
}

// normalizeData replaces nil render lists with empty ones so that documents
// never carry null sequences.
func normalizeData(data NodeData) NodeData {
	if rd, ok := data.(RenderData); ok {
		if rd.GeometryIDs == nil {
			rd.GeometryIDs = []string{}
		}
		if rd.LightIDs == nil {
			rd.LightIDs = []string{}
		}
		return rd
	}
	return data
}

func cloneData(data NodeData) NodeData {
	switch d := data.(type) {
	case RenderData:
		return RenderData{
			GeometryIDs: append([]string{}, d.GeometryIDs...),
			LightIDs:    append([]string{}, d.LightIDs...),
		}
	case SphereData, BoxData, LightData:
		return d
	default:
		return data
	}
}
