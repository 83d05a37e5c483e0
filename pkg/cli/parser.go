package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// KindStaticSite is the manifest kind describing one site.
const KindStaticSite = "StaticSite"

// StaticSite is a site manifest document.
type StaticSite struct {
	APIVersion string         `yaml:"apiVersion"`
	Kind       string         `yaml:"kind"`
	Metadata   Metadata       `yaml:"metadata"`
	Spec       StaticSiteSpec `yaml:"spec"`
}

type Metadata struct {
	Name   string            `yaml:"name"`
	Labels map[string]string `yaml:"labels,omitempty"`
}

type StaticSiteSpec struct {
	FQDN              string   `yaml:"fqdn"`
	Source            string   `yaml:"source"`
	IndexDocument     string   `yaml:"indexDocument,omitempty"`
	Region            string   `yaml:"region,omitempty"`
	Endpoint          string   `yaml:"endpoint,omitempty"`
	Profile           string   `yaml:"profile,omitempty"`
	InvalidationPaths []string `yaml:"invalidationPaths,omitempty"`
	WaitCertificate   string   `yaml:"waitCertificate,omitempty"`
}

// ParseFile parses a manifest file holding one or more documents.
func ParseFile(filename string) ([]StaticSite, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", filename, err)
	}
	return ParseYAML(data)
}

// ParseYAML parses documents separated by ---. Empty documents and documents
// of other kinds are skipped.
func ParseYAML(data []byte) ([]StaticSite, error) {
	var sites []StaticSite

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	for i := 0; ; i++ {
		var doc StaticSite
		err := decoder.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}
		if !strings.EqualFold(doc.Kind, KindStaticSite) {
			continue
		}
		if doc.Spec.WaitCertificate != "" {
			if _, err := time.ParseDuration(doc.Spec.WaitCertificate); err != nil {
				return nil, fmt.Errorf("document %d: invalid waitCertificate: %w", i, err)
			}
		}
		sites = append(sites, doc)
	}
	return sites, nil
}

// SelectSite picks the site to deploy: the one whose fqdn matches, or the
// only one when fqdn is empty.
func SelectSite(sites []StaticSite, fqdn string) (*StaticSite, error) {
	if len(sites) == 0 {
		return nil, fmt.Errorf("no %s document found", KindStaticSite)
	}
	if fqdn == "" {
		if len(sites) > 1 {
			return nil, fmt.Errorf("manifest holds %d sites, select one with --fqdn", len(sites))
		}
		return &sites[0], nil
	}
	for i := range sites {
		if strings.EqualFold(sites[i].Spec.FQDN, fqdn) {
			return &sites[i], nil
		}
	}
	return nil, fmt.Errorf("no %s document for %s", KindStaticSite, fqdn)
}

// LoadManifest reads filename and selects the site for fqdn.
func LoadManifest(filename, fqdn string) (*StaticSite, error) {
	sites, err := ParseFile(filename)
	if err != nil {
		return nil, err
	}
	site, err := SelectSite(sites, fqdn)
	if err != nil {
		return nil, fmt.Errorf("manifest %s: %w", filename, err)
	}
	return site, nil
}
