// Package credentials loads database access information from a credentials
// document or from the environment.
//
// The document maps profile names to connection fields:
//
//	{
//	    "warehouse": {
//	        "host": "domain.net",
//	        "user": "domain\\user.name",
//	        "password": "password",
//	        "database": "db_name"
//	    }
//	}
//
// It is JSON by convention and parsed as YAML, so YAML documents work too.
package credentials

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/vvka-141/dbhandler/pkg/dbhandler"
	"gopkg.in/yaml.v3"
)

// Environment variables read by FromEnv.
const (
	EnvHost     = "DBHANDLER_HOST"
	EnvUser     = "DBHANDLER_USER"
	EnvPassword = "DBHANDLER_PASSWORD"
	EnvDatabase = "DBHANDLER_DATABASE"
	EnvPort     = "DBHANDLER_PORT"
	EnvDriver   = "DBHANDLER_DRIVER"
)

// Profile is one entry of the credentials document.
type Profile struct {
	Host              string `yaml:"host"`
	User              string `yaml:"user"`
	Password          string `yaml:"password"`
	Database          string `yaml:"database"`
	Port              int    `yaml:"port"`
	Driver            string `yaml:"driver"`
	SSLMode           string `yaml:"sslmode"`
	AuthMethod        string `yaml:"auth_method"`
	AWSRegion         string `yaml:"aws_region"`
	AzureTenantID     string `yaml:"azure_tenant_id"`
	AzureClientID     string `yaml:"azure_client_id"`
	AzureClientSecret string `yaml:"azure_client_secret"`
	GoogleInstance    string `yaml:"google_instance"`
}

// Access converts the profile into AccessInformation. It does not validate
// required fields; handler.New does.
func (p Profile) Access() (dbhandler.AccessInformation, error) {
	method, err := dbhandler.ParseAuthMethod(p.AuthMethod)
	if err != nil {
		return dbhandler.AccessInformation{}, err
	}
	return dbhandler.AccessInformation{
		Host:              p.Host,
		User:              p.User,
		Password:          p.Password,
		Database:          p.Database,
		Port:              p.Port,
		SSLMode:           p.SSLMode,
		Driver:            p.Driver,
		AuthMethod:        method,
		AWSRegion:         p.AWSRegion,
		AzureTenantID:     p.AzureTenantID,
		AzureClientID:     p.AzureClientID,
		AzureClientSecret: p.AzureClientSecret,
		GoogleInstance:    p.GoogleInstance,
	}, nil
}

// Document is a parsed credentials document keyed by profile name.
type Document map[string]Profile

// DefaultPath returns ~/access_information.json.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, dbhandler.DefaultAccessInformationFile), nil
}

// Load reads the document at path. An empty path means DefaultPath; a
// leading "~/" is expanded to the home directory.
func Load(path string) (Document, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials document %s: %w: %w", resolved, dbhandler.ErrInvalidConfig, err)
	}

	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", resolved, err)
	}
	return doc, nil
}

// Parse decodes a credentials document.
func Parse(data []byte) (Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid credentials document: %w: %w", dbhandler.ErrInvalidConfig, err)
	}
	if doc == nil {
		doc = Document{}
	}
	return doc, nil
}

// Names returns the profile names in sorted order.
func (d Document) Names() []string {
	names := make([]string, 0, len(d))
	for name := range d {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Profile returns the named profile. An empty name selects the only profile
// when the document has exactly one.
func (d Document) Profile(name string) (Profile, error) {
	if name == "" {
		if len(d) == 1 {
			for _, p := range d {
				return p, nil
			}
		}
		return Profile{}, fmt.Errorf("no profile selected, available: %s: %w", strings.Join(d.Names(), ", "), dbhandler.ErrProfileNotFound)
	}

	p, ok := d[name]
	if !ok {
		return Profile{}, fmt.Errorf("%q (available: %s): %w", name, strings.Join(d.Names(), ", "), dbhandler.ErrProfileNotFound)
	}
	return p, nil
}

// Access is Profile followed by Profile.Access.
func (d Document) Access(name string) (dbhandler.AccessInformation, error) {
	p, err := d.Profile(name)
	if err != nil {
		return dbhandler.AccessInformation{}, err
	}
	return p.Access()
}

// FromEnv builds AccessInformation from DBHANDLER_* variables. ok is false
// when DBHANDLER_HOST is unset.
func FromEnv() (access dbhandler.AccessInformation, ok bool, err error) {
	host := os.Getenv(EnvHost)
	if host == "" {
		return dbhandler.AccessInformation{}, false, nil
	}

	access = dbhandler.AccessInformation{
		Host:     host,
		User:     os.Getenv(EnvUser),
		Password: os.Getenv(EnvPassword),
		Database: os.Getenv(EnvDatabase),
		Driver:   os.Getenv(EnvDriver),
	}
	if v := os.Getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return dbhandler.AccessInformation{}, false, fmt.Errorf("%s=%q: %w: %w", EnvPort, v, dbhandler.ErrInvalidConfig, err)
		}
		access.Port = port
	}
	return access, true, nil
}

func resolvePath(path string) (string, error) {
	if path == "" {
		return DefaultPath()
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
	}
	return path, nil
}
