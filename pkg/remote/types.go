// Package remote exposes a signal generator over MQTT and connects to
// remote ones.
//
// Topics, relative to the broker URL path:
//
//	<type>/<id>/meta   retained JSON Meta, empty when offline
//	<type>/<id>/state  retained JSON device.State
//	<type>/<id>/cmd    command lines to the device
//	<type>/<id>/msg    response lines from the device
package remote

// DefaultType is the device type of siggen agents.
const DefaultType = "siggen"

// Ref is a reference to a device.
type Ref struct {
	// Type is device type.
	Type string
	// ID is unique ID of the device.
	ID string
}

// Name retrieves the name from ref, which is also the topic prefix.
func (r Ref) Name() string {
	return r.Type + "/" + r.ID
}

// IsValid indicates Ref is valid.
func (r Ref) IsValid() bool {
	return r.Type != "" && r.ID != ""
}

// Topic returns a topic under the device.
func (r Ref) Topic(sub string) string {
	return r.Name() + "/" + sub
}

// Meta provides metadata of a device.
type Meta struct {
	Description string            `json:"description,omitempty"`
	Labels      map[string]string `json:"labels,omitempty"`
}

// Info provides information of a device.
type Info struct {
	Ref  Ref
	Meta Meta
}

// Topic names under a device.
const (
	TopicMeta  = "meta"
	TopicState = "state"
	TopicCmd   = "cmd"
	TopicMsg   = "msg"
)
