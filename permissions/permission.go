package permissions

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"hotel/shared/constant"

	"github.com/rs/zerolog/log"
)

//go:embed permissions.json
var permissionsData []byte

var (
	ErrDuplicateEndpoint = errors.New("endpoint listed twice")
	ErrUnknownRole       = errors.New("unknown role")
	ErrInvalidEndpoint   = errors.New("invalid endpoint")
)

var (
	knownRoles   = []string{constant.RoleClient, constant.RoleOperator, constant.RoleManager}
	knownMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete}
)

// Permission is the role list of one chi route pattern and method.
type Permission struct {
	Permissions []string `json:"permissions"`
	Path        string   `json:"path"`
	Method      string   `json:"method"`
	Skip        bool     `json:"skip"`
}

// Allows reports whether role may call the endpoint. An empty list admits any
// authenticated caller.
func (p Permission) Allows(role string) bool {
	return len(p.Permissions) == 0 || slices.Contains(p.Permissions, role)
}

type PermissionData struct {
	Endpoints []Permission `json:"endpoints"`
	Skip      bool         `json:"skip"`
}

// FindPermissions returns the entry for a route pattern, or the zero
// Permission when none is listed.
func (r *PermissionData) FindPermissions(path, method string) Permission {
	idx := slices.IndexFunc(r.Endpoints, func(rp Permission) bool {
		return rp.Path == path && strings.EqualFold(rp.Method, method)
	})

	if idx == -1 {
		return Permission{}
	}

	return r.Endpoints[idx]
}

func (r *PermissionData) Validate() error {
	seen := make(map[string]struct{}, len(r.Endpoints))

	for _, endpoint := range r.Endpoints {
		method := strings.ToUpper(endpoint.Method)
		if !strings.HasPrefix(endpoint.Path, "/") || !slices.Contains(knownMethods, method) {
			return fmt.Errorf("%w: %q %q", ErrInvalidEndpoint, endpoint.Method, endpoint.Path)
		}

		key := method + " " + endpoint.Path
		if _, ok := seen[key]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateEndpoint, key)
		}

		seen[key] = struct{}{}

		for _, role := range endpoint.Permissions {
			if !slices.Contains(knownRoles, role) {
				return fmt.Errorf("%w %q on %s", ErrUnknownRole, role, key)
			}
		}
	}

	return nil
}

func Parse(data []byte) (*PermissionData, error) {
	var permissions PermissionData

	if err := json.Unmarshal(data, &permissions); err != nil {
		return nil, fmt.Errorf("decoding permissions: %w", err)
	}

	if err := permissions.Validate(); err != nil {
		return nil, err
	}

	return &permissions, nil
}

// Get loads the embedded table. A broken table stops the process at startup.
func Get() *PermissionData {
	permissions, err := Parse(permissionsData)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load embedded permissions")
	}

	log.Info().Int("endpoints", len(permissions.Endpoints)).Msg("Loaded embedded permissions")

	return permissions
}
