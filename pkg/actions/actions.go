package actions

import (
	"context"
	"fmt"

	"github.com/arthur-debert/fileroutes/pkg/errors"
	"github.com/arthur-debert/fileroutes/pkg/frontmatter"
	"github.com/arthur-debert/fileroutes/pkg/registry"
	"github.com/arthur-debert/fileroutes/pkg/router"
	"github.com/arthur-debert/fileroutes/pkg/types"
	"github.com/cespare/xxhash/v2"
	"github.com/go-viper/mapstructure/v2"
	"github.com/mitchellh/copystructure"
)

// Factory builds a handler from its configured options
type Factory func(opts map[string]interface{}) (router.Handler, error)

var factories = registry.New[Factory]()

func init() {
	registry.MustRegister(factories, "set", newSet)
	registry.MustRegister(factories, "frontmatter", newFrontMatter)
	registry.MustRegister(factories, "extname", newExtname)
	registry.MustRegister(factories, "checksum", newChecksum)
	registry.MustRegister(factories, "prepend", newPrepend)
	registry.MustRegister(factories, "append", newAppend)
	registry.MustRegister(factories, "fail", newFail)
}

// Register adds a named action. Names are unique.
func Register(name string, f Factory) error {
	if f == nil {
		return errors.Newf(errors.ErrInvalidInput, "action %q has no factory", name)
	}
	return factories.Register(name, f)
}

// Names lists the registered actions in registration order
func Names() []string {
	return factories.List()
}

// Build resolves name and builds its handler with opts
func Build(name string, opts map[string]interface{}) (router.Handler, error) {
	factory, err := factories.Get(name)
	if err != nil {
		return nil, errors.Newf(errors.ErrActionInvalid, "unknown action %q", name).
			WithDetail("action", name)
	}
	h, err := factory(opts)
	if err != nil {
		if errors.IsErrorCode(err, errors.ErrActionInvalid) {
			return nil, err
		}
		return nil, errors.Wrapf(err, errors.ErrActionInvalid, "invalid options for action %q", name).
			WithDetail("action", name)
	}
	return h, nil
}

func decode(opts map[string]interface{}, out interface{}) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(opts)
}

func required(action, field, value string) error {
	if value == "" {
		return errors.Newf(errors.ErrActionInvalid, "action %q requires %q", action, field).
			WithDetail("action", action)
	}
	return nil
}

func newSet(opts map[string]interface{}) (router.Handler, error) {
	var o struct {
		Key   string      `mapstructure:"key"`
		Value interface{} `mapstructure:"value"`
	}
	if err := decode(opts, &o); err != nil {
		return nil, err
	}
	if err := required("set", "key", o.Key); err != nil {
		return nil, err
	}
	if o.Value == nil {
		o.Value = true
	}
	// Maps and slices from config are copied so no two files share a value
	return func(_ context.Context, f *types.File) error {
		v, err := copystructure.Copy(o.Value)
		if err != nil {
			return errors.Wrapf(err, errors.ErrActionFailed, "copying value for %q", o.Key).
				WithDetail("path", f.Path)
		}
		f.Set(o.Key, v)
		return nil
	}, nil
}

func newFrontMatter(opts map[string]interface{}) (router.Handler, error) {
	var o struct {
		Key   string `mapstructure:"key"`
		Strip *bool  `mapstructure:"strip"`
	}
	if err := decode(opts, &o); err != nil {
		return nil, err
	}
	strip := o.Strip == nil || *o.Strip
	return func(_ context.Context, f *types.File) error {
		data, body, err := frontmatter.Parse(f.Contents)
		if err != nil {
			return errors.Wrap(err, errors.ErrActionFailed, "front matter").
				WithDetail("path", f.Path)
		}
		if data == nil {
			return nil
		}
		if o.Key != "" {
			f.Set(o.Key, data)
		} else {
			for k, v := range data {
				f.Set(k, v)
			}
		}
		if strip {
			f.Contents = body
		}
		return nil
	}, nil
}

func newExtname(opts map[string]interface{}) (router.Handler, error) {
	var o struct {
		Ext *string `mapstructure:"ext"`
	}
	if err := decode(opts, &o); err != nil {
		return nil, err
	}
	if o.Ext == nil {
		return nil, errors.New(errors.ErrActionInvalid, `action "extname" requires "ext"`)
	}
	return func(_ context.Context, f *types.File) error {
		f.SetExtname(*o.Ext)
		return nil
	}, nil
}

func newChecksum(opts map[string]interface{}) (router.Handler, error) {
	o := struct {
		Key string `mapstructure:"key"`
	}{Key: "checksum"}
	if err := decode(opts, &o); err != nil {
		return nil, err
	}
	if err := required("checksum", "key", o.Key); err != nil {
		return nil, err
	}
	return func(_ context.Context, f *types.File) error {
		f.Set(o.Key, fmt.Sprintf("%016x", xxhash.Sum64(f.Contents)))
		return nil
	}, nil
}

type textOptions struct {
	Text string `mapstructure:"text"`
}

func newPrepend(opts map[string]interface{}) (router.Handler, error) {
	var o textOptions
	if err := decode(opts, &o); err != nil {
		return nil, err
	}
	return func(_ context.Context, f *types.File) error {
		f.Contents = append([]byte(o.Text), f.Contents...)
		return nil
	}, nil
}

func newAppend(opts map[string]interface{}) (router.Handler, error) {
	var o textOptions
	if err := decode(opts, &o); err != nil {
		return nil, err
	}
	return func(_ context.Context, f *types.File) error {
		contents := make([]byte, 0, len(f.Contents)+len(o.Text))
		f.Contents = append(append(contents, f.Contents...), o.Text...)
		return nil
	}, nil
}

func newFail(opts map[string]interface{}) (router.Handler, error) {
	o := struct {
		Message string `mapstructure:"message"`
	}{Message: "rejected"}
	if err := decode(opts, &o); err != nil {
		return nil, err
	}
	return func(_ context.Context, f *types.File) error {
		return errors.Newf(errors.ErrActionFailed, "%s: %s", f.Relative(), o.Message).
			WithDetail("path", f.Path)
	}, nil
}
