package store

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"sync"

	"github.com/golang/protobuf/proto"
)

// MemKV keeps the namespace in memory.
type MemKV struct {
	vals map[string]uint64
	lock sync.Mutex
}

// NewMemKV creates an empty MemKV.
func NewMemKV() *MemKV {
	return &MemKV{}
}

// Load implements KV.
func (m *MemKV) Load() (map[string]uint64, error) {
	m.lock.Lock()
	defer m.lock.Unlock()
	return copyValues(m.vals), nil
}

// Store implements KV.
func (m *MemKV) Store(vals map[string]uint64) error {
	m.lock.Lock()
	m.vals = copyValues(vals)
	m.lock.Unlock()
	return nil
}

func copyValues(vals map[string]uint64) map[string]uint64 {
	out := make(map[string]uint64, len(vals))
	for k, v := range vals {
		out[k] = v
	}
	return out
}

// Namespace is the protobuf message persisted by FileKV.
type Namespace struct {
	Name   string            `protobuf:"bytes,1,opt,name=name,proto3" json:"name,omitempty"`
	Values map[string]uint64 `protobuf:"bytes,2,rep,name=values,proto3" json:"values,omitempty" protobuf_key:"bytes,1,opt,name=key,proto3" protobuf_val:"varint,2,opt,name=value,proto3"`
}

// Reset implements proto.Message.
func (m *Namespace) Reset() { *m = Namespace{} }

// String implements proto.Message.
func (m *Namespace) String() string { return proto.CompactTextString(m) }

// ProtoMessage implements proto.Message.
func (*Namespace) ProtoMessage() {}

// FileKV keeps one namespace in a protobuf encoded file.
// Writes go to a temporary file which is renamed over the old one, so
// a crash never leaves a half written namespace.
type FileKV struct {
	Name string
	Path string
}

// NewFileKV creates a FileKV storing namespace name under dir.
func NewFileKV(dir, name string) *FileKV {
	return &FileKV{Name: name, Path: filepath.Join(dir, name+".pb")}
}

// Load implements KV.
func (f *FileKV) Load() (map[string]uint64, error) {
	data, err := ioutil.ReadFile(f.Path)
	if os.IsNotExist(err) {
		return map[string]uint64{}, nil
	}
	if err != nil {
		return nil, err
	}
	var ns Namespace
	if err = proto.Unmarshal(data, &ns); err != nil {
		return nil, fmt.Errorf("decode %s: %v", f.Path, err)
	}
	if ns.Name != f.Name {
		return nil, fmt.Errorf("decode %s: namespace %q, expect %q", f.Path, ns.Name, f.Name)
	}
	if ns.Values == nil {
		ns.Values = map[string]uint64{}
	}
	return ns.Values, nil
}

// Store implements KV.
func (f *FileKV) Store(vals map[string]uint64) error {
	data, err := proto.Marshal(&Namespace{Name: f.Name, Values: vals})
	if err != nil {
		return err
	}
	dir := filepath.Dir(f.Path)
	if err = os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	tmp, err := ioutil.TempFile(dir, "."+f.Name+".tmp")
	if err != nil {
		return err
	}
	if _, err = tmp.Write(data); err == nil {
		err = tmp.Sync()
	}
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Rename(tmp.Name(), f.Path)
	}
	if err != nil {
		os.Remove(tmp.Name())
	}
	return err
}
