// Package registry registers graph-explorer compiler servers in etcd so
// that clients can discover them.
//
// Each running server owns one key under /{namespace}/{kind}/{name}/{instance-id}
// bound to an etcd lease. The lease is renewed in the background and revoked
// on Deregister, so crashed servers disappear once their TTL lapses.
package registry

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// KindCompiler is the kind under which compiler servers register.
const KindCompiler = "compiler"

// EnvEndpoints names the environment variable read by NewClientFromEnv.
const EnvEndpoints = "GRAPH_EXPLORER_REGISTRY_ENDPOINTS"

// ServiceInfo describes a registered service instance.
type ServiceInfo struct {
	// Kind identifies the component type, normally KindCompiler.
	Kind string `json:"kind"`

	// Name is the service name (e.g., "graph-explorer").
	Name string `json:"name"`

	// Version is the semantic version of the server.
	Version string `json:"version"`

	// InstanceID distinguishes concurrently running instances.
	InstanceID string `json:"instance_id"`

	// Endpoint is the host:port address of the gRPC server.
	Endpoint string `json:"endpoint"`

	// Metadata carries free-form attributes such as the supported dialects.
	Metadata map[string]string `json:"metadata"`

	// StartedAt is the timestamp when this instance started.
	StartedAt time.Time `json:"started_at"`
}

// NewServiceInfo returns a compiler ServiceInfo with a fresh instance ID.
func NewServiceInfo(name, version, endpoint string) ServiceInfo {
	return ServiceInfo{
		Kind:       KindCompiler,
		Name:       name,
		Version:    version,
		InstanceID: uuid.New().String(),
		Endpoint:   endpoint,
		Metadata:   map[string]string{},
		StartedAt:  time.Now(),
	}
}

// Registry defines service registration and discovery.
//
// Implementations must be safe for concurrent use.
type Registry interface {
	// Register adds the instance and keeps its lease alive until Deregister
	// or Close. Registering the same InstanceID again replaces the entry.
	Register(ctx context.Context, info ServiceInfo) error

	// Deregister revokes the instance's lease. Unknown instances are a no-op.
	Deregister(ctx context.Context, info ServiceInfo) error

	// Discover returns every live instance of kind and name in arbitrary order.
	Discover(ctx context.Context, kind, name string) ([]ServiceInfo, error)

	// Close stops keepalives and releases the connection.
	Close() error
}

// Config holds registry connection configuration.
type Config struct {
	// Endpoints is the list of etcd endpoints. Required.
	Endpoints []string `json:"endpoints"`

	// Namespace is the etcd key prefix. Default: "graph-explorer"
	Namespace string `json:"namespace"`

	// TTL is the lease time-to-live in seconds. Default: 30
	TTL int `json:"ttl"`

	// TLS enables mutual TLS towards etcd when non-nil and enabled.
	TLS *TLSConfig `json:"tls"`
}

// TLSConfig holds client certificate configuration for etcd.
type TLSConfig struct {
	Enabled  bool   `json:"enabled"`
	CertFile string `json:"cert_file"`
	KeyFile  string `json:"key_file"`
	CAFile   string `json:"ca_file"`
}

func (c Config) withDefaults() Config {
	if c.Namespace == "" {
		c.Namespace = "graph-explorer"
	}
	if c.TTL <= 0 {
		c.TTL = 30
	}
	return c
}
