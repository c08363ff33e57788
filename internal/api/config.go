// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package api

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/alvinbaena/golomb/internal/util"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// DefaultMaxEncodedBits caps the payload of a single encode request, 128 MiB.
const DefaultMaxEncodedBits = 1 << 30

type Config struct {
	Port      string `mapstructure:"PORT" validate:"required,number"`
	GcsFile   string `mapstructure:"GCS_FILE"`
	SelfTLS   bool   `mapstructure:"SELF_TLS" validate:"required_without_all=TLSCert TLSKey"`
	TLSCert   string `mapstructure:"TLS_CERT" validate:"required_if=SelfTLS false,required_with=TLSKey"`
	TLSKey    string `mapstructure:"TLS_KEY" validate:"required_if=SelfTLS false,required_with=TLSCert"`
	Debug     bool   `mapstructure:"DEBUG"`
	MaxConns  int    `mapstructure:"MAX_CONNS" validate:"gte=0"`
	CacheSize int64  `mapstructure:"CACHE_SIZE" validate:"gte=0"`

	// MaxEncodedBits is the largest payload the encode endpoint produces.
	MaxEncodedBits uint64 `mapstructure:"MAX_ENCODED_BITS" validate:"gte=1"`
}

func bindEnvs(v *viper.Viper, iface interface{}, parts ...string) {
	ifv := reflect.ValueOf(iface)
	ift := reflect.TypeOf(iface)
	for i := 0; i < ift.NumField(); i++ {
		fv := ifv.Field(i)
		t := ift.Field(i)
		tv, ok := t.Tag.Lookup("mapstructure")
		if !ok {
			continue
		}
		switch fv.Kind() {
		case reflect.Struct:
			bindEnvs(v, fv.Interface(), append(parts, tv)...)
		default:
			_ = v.BindEnv(strings.Join(append(parts, tv), "."))
		}
	}
}

func msgForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "required_without_all":
		return fmt.Sprintf("This field is required if fields [%s] are missing", util.ToScreamingSnakeCase(fe.Param()))
	case "required_if":
		return fmt.Sprintf("This field is required if %s", util.ToScreamingSnakeCase(fe.Param()))
	case "required_with":
		return fmt.Sprintf("This field requires the presence of %s", util.ToScreamingSnakeCase(fe.Param()))
	case "number":
		return "This field must be a number"
	case "gte":
		return fmt.Sprintf("This field must be at least %s", fe.Param())
	}
	return fe.Error() // default error
}

// LoadConfig reads the server configuration from the environment.
func LoadConfig() (config Config, err error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetDefault("PORT", "3100")
	v.SetDefault("CACHE_SIZE", 1<<16)
	v.SetDefault("MAX_ENCODED_BITS", DefaultMaxEncodedBits)

	// This is to not require a config file to unmarshal Envs in a struct
	// https://github.com/spf13/viper/issues/188#issuecomment-399884438
	config = Config{}
	bindEnvs(v, config)

	if err = v.Unmarshal(&config); err != nil {
		return config, errors.Wrap(err, "invalid configuration in environment")
	}

	validate := validator.New()
	if err = validate.Struct(&config); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			var msgs []string
			for _, fe := range ve {
				msgs = append(msgs, fmt.Sprintf("%s: %s", util.ToScreamingSnakeCase(fe.Field()), msgForTag(fe)))
			}
			return config, errors.New(strings.Join(msgs, ". "))
		}
		return config, errors.Wrap(err, "error validating configuration from environment")
	}

	return
}
