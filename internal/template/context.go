package template

import "maps"

// Data is the root value handed to a template.
type Data map[string]interface{}

// Merge combines several data maps; later maps win on key collisions.
func Merge(layers ...Data) Data {
	result := make(Data)
	for _, layer := range layers {
		maps.Copy(result, layer)
	}
	return result
}
