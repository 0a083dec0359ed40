// Package handlers is the command action catalog. Each functional domain
// (basic, parameters, sketch, features, construction, assembly, export)
// exports a Table; Catalog merges them into the registry the dispatcher
// routes through. A name collision between tables aborts startup.
package handlers

import (
	"fmt"
	"sort"

	"github.com/aretw0/lathe/pkg/export"
	"github.com/aretw0/lathe/pkg/registry"
	"github.com/mitchellh/mapstructure"
)

// Table maps action names to handlers for one functional domain.
type Table map[string]registry.Handler

// Catalog assembles the full action registry from the per-domain tables.
// Returns an error on the first duplicate action name.
func Catalog(exp *export.Exporter) (*registry.Registry, error) {
	reg := registry.New()
	tables := []Table{
		Basic(),
		DesignTable(),
		Parameters(),
		SketchTable(),
		Features(),
		Construction(),
		Assembly(),
		Export(exp),
	}
	for _, tbl := range tables {
		if err := registerTable(reg, tbl); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

func registerTable(reg *registry.Registry, tbl Table) error {
	// Sorted so a collision always reports deterministically.
	names := make([]string, 0, len(tbl))
	for name := range tbl {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := reg.Register(name, tbl[name]); err != nil {
			return err
		}
	}
	return nil
}

// decode maps raw JSON params onto a typed struct. Weak typing absorbs the
// float64-everywhere shape of decoded JSON; unknown keys are ignored.
func decode(params map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "json",
		WeaklyTypedInput: true,
		Squash:           true,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(params); err != nil {
		return fmt.Errorf("invalid params: %w", err)
	}
	return nil
}
