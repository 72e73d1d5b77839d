// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package profile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/hashicorp/go-multierror"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/matt-FFFFFF/crun/internal/dispatch"
	"github.com/zclconf/go-cty/cty"
)

const (
	extYAML = ".yaml"
	extYML  = ".yml"
	extHCL  = ".hcl"
)

var (
	// ErrUnsupportedFormat is returned when the profile extension is not known.
	ErrUnsupportedFormat = errors.New("unsupported profile format")
	// ErrDecodeProfile is returned when the profile cannot be decoded.
	ErrDecodeProfile = errors.New("failed to decode profile")
	// ErrInvalidProfile is returned when a decoded profile fails validation.
	ErrInvalidProfile = errors.New("invalid profile")
)

// Profile is the on-disk description of a dispatcher.
// Unset toggles are nil so that callers can tell "false" from "not given".
type Profile struct {
	Scheduler      string `yaml:"scheduler" hcl:"scheduler,optional"`
	Priority       *int   `yaml:"priority" hcl:"priority,optional"`
	HostConstraint string `yaml:"host_constraint" hcl:"host_constraint,optional"`
	RemoteHost     string `yaml:"remote_host" hcl:"remote_host,optional"`
	RemoteUser     string `yaml:"remote_user" hcl:"remote_user,optional"`
	RemotePassword string `yaml:"remote_password" hcl:"remote_password,optional"`
	CommandPrefix  string `yaml:"command_prefix" hcl:"command_prefix,optional"`

	Detach        *bool `yaml:"detach" hcl:"detach,optional"`
	DiscardOutput *bool `yaml:"discard_output" hcl:"discard_output,optional"`
	Echo          *bool `yaml:"echo" hcl:"echo,optional"`
	EchoStdOut    *bool `yaml:"echo_stdout" hcl:"echo_stdout,optional"`
	EchoStdErr    *bool `yaml:"echo_stderr" hcl:"echo_stderr,optional"`
	DryRun        *bool `yaml:"dry_run" hcl:"dry_run,optional"`

	// Remain swallows attributes this version does not know about.
	Remain hcl.Body `yaml:"-" hcl:",remain"`
}

// Decode parses data according to the extension of name.
// It does not validate the result.
func Decode(name string, data []byte) (*Profile, error) {
	p := new(Profile)

	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case extYAML, extYML:
		if err := yaml.Unmarshal(data, p); err != nil {
			return nil, errors.Join(ErrDecodeProfile, err)
		}
	case extHCL:
		if err := hclsimple.Decode(name, data, evalContext(), p); err != nil {
			return nil, errors.Join(ErrDecodeProfile, err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	return p, nil
}

// evalContext exposes the process environment to HCL profiles as `env.NAME`.
func evalContext() *hcl.EvalContext {
	vars := make(map[string]cty.Value)

	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}

		vars[k] = cty.StringVal(v)
	}

	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": cty.ObjectVal(vars),
		},
	}
}

// Validate reports every problem with the profile at once.
func (p *Profile) Validate() error {
	var result *multierror.Error

	variant, err := dispatch.ParseVariant(p.Scheduler)
	if err != nil {
		result = multierror.Append(result, err)
	}

	if p.Priority != nil && *p.Priority < 0 {
		result = multierror.Append(result, fmt.Errorf("priority must not be negative, got %d", *p.Priority))
	}

	if err == nil && variant != dispatch.VariantPriority {
		if p.Priority != nil {
			result = multierror.Append(result, fmt.Errorf("priority is only valid for scheduler %q", dispatch.VariantPriority))
		}

		if p.HostConstraint != "" {
			result = multierror.Append(result, fmt.Errorf("host_constraint is only valid for scheduler %q", dispatch.VariantPriority))
		}
	}

	if result == nil {
		return nil
	}

	return errors.Join(ErrInvalidProfile, result)
}

// Config converts the profile into a dispatcher configuration.
// An unknown scheduler maps to the direct variant; call Validate first.
func (p *Profile) Config() dispatch.Config {
	variant, _ := dispatch.ParseVariant(p.Scheduler)

	var priority *int
	if p.Priority != nil {
		v := *p.Priority
		priority = &v
	}

	return dispatch.Config{
		Variant:        variant,
		RemoteHost:     p.RemoteHost,
		RemoteUser:     p.RemoteUser,
		RemotePassword: p.RemotePassword,
		CommandPrefix:  p.CommandPrefix,
		Priority:       priority,
		HostConstraint: p.HostConstraint,
	}
}

// Apply sets the toggles the profile specifies on d and leaves the rest alone.
func (p *Profile) Apply(d *dispatch.Dispatcher) {
	if p.Detach != nil {
		d.SetDetach(*p.Detach)
	}

	if p.DiscardOutput != nil {
		d.SetDiscardOutput(*p.DiscardOutput)
	}

	if p.Echo != nil {
		d.SetEchoCommand(*p.Echo)
	}

	if p.EchoStdOut != nil {
		d.SetEchoStdOut(*p.EchoStdOut)
	}

	if p.EchoStdErr != nil {
		d.SetEchoStdErr(*p.EchoStdErr)
	}

	if p.DryRun != nil {
		d.SetRunEnabled(!*p.DryRun)
	}
}
