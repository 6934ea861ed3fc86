// Package edm holds the read-only entity data model lookups used to address
// properties and entity sets of the remote search API.
package edm

import (
	"fmt"
	"strings"
)

// FQN is a fully-qualified name: a namespace.name pair identifying a property or entity type.
type FQN struct {
	Namespace string `json:"namespace"`
	Name      string `json:"name"`
}

// ParseFQN splits "namespace.name" at the first dot.
func ParseFQN(s string) (FQN, error) {
	ns, name, ok := strings.Cut(s, ".")
	if !ok || ns == "" || name == "" {
		return FQN{}, fmt.Errorf("invalid fqn %q: want namespace.name", s)
	}
	return FQN{Namespace: ns, Name: name}, nil
}

// MustFQN parses s or panics. For package-level constants only.
func MustFQN(s string) FQN {
	f, err := ParseFQN(s)
	if err != nil {
		panic(err)
	}
	return f
}

func (f FQN) String() string { return f.Namespace + "." + f.Name }

// IsZero reports whether both parts are empty.
func (f FQN) IsZero() bool { return f.Namespace == "" && f.Name == "" }
