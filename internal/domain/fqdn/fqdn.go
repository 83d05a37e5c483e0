// Package fqdn decomposes site names and decides wildcard certificate coverage.
//
// A FQDN breaks down into hostname + domain, and the last two labels form
// the root domain that owns the hosted zone:
//
//	FQDN:        foo.bar.example.com
//	Hostname:    foo
//	Domain:      bar.example.com
//	Root domain: example.com
package fqdn

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidFQDN = errors.New("invalid fully qualified domain name")

// ParseError reports an input that is not a usable FQDN.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("could not parse fqdn %q: %s", e.Input, e.Reason)
}

func (e *ParseError) Unwrap() error {
	return ErrInvalidFQDN
}

// FQDN is a parsed fully qualified domain name.
type FQDN struct {
	Name       string
	Hostname   string
	Domain     string
	RootDomain string
}

// Parse splits s into its hostname, domain and root domain. Two-label names
// have no hostname; the domain is the name itself.
func Parse(s string) (FQDN, error) {
	name := strings.ToLower(s)
	if name == "" {
		return FQDN{}, &ParseError{Input: s, Reason: "empty name"}
	}

	labels := strings.Split(name, ".")
	if len(labels) < 2 {
		return FQDN{}, &ParseError{Input: s, Reason: "at least two labels are required"}
	}
	for _, label := range labels {
		if err := checkLabel(label); err != nil {
			return FQDN{}, &ParseError{Input: s, Reason: err.Error()}
		}
	}

	f := FQDN{
		Name:       name,
		Domain:     name,
		RootDomain: strings.Join(labels[len(labels)-2:], "."),
	}
	if len(labels) > 2 {
		f.Hostname = labels[0]
		f.Domain = strings.Join(labels[1:], ".")
	}
	return f, nil
}

func checkLabel(label string) error {
	if label == "" {
		return errors.New("empty label")
	}
	for _, r := range label {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
		default:
			return fmt.Errorf("invalid character %q in label %q", r, label)
		}
	}
	return nil
}

// HasHostname reports whether the name carries a leading hostname label.
func (f FQDN) HasHostname() bool {
	return f.Hostname != ""
}

func (f FQDN) String() string {
	return f.Name
}
