package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
)

// envPrefix prefixes every environment variable bound to a flag:
// --db reads DOCQ_DB, --golden-dir reads DOCQ_GOLDEN_DIR.
const envPrefix = "DOCQ"

// loadConfig fills unset flags from the config file and the environment.
// Flags given on the command line always win. An empty configFile looks
// for docq.yaml in the working directory and ignores its absence.
func loadConfig(fs *pflag.FlagSet, configFile string) error {
	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("docq")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("reading config: %w", err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	return bindFlags(fs, v)
}

// bindFlags applies viper values to every flag not set on the command line.
func bindFlags(fs *pflag.FlagSet, v *viper.Viper) error {
	var err error
	fs.VisitAll(func(f *pflag.Flag) {
		// Environment variables can't have dashes in them.
		if strings.Contains(f.Name, "-") {
			suffix := strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))
			err = multierr.Append(err, v.BindEnv(f.Name, envPrefix+"_"+suffix))
		}

		if !f.Changed && v.IsSet(f.Name) {
			err = multierr.Append(err, fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name))))
		}
	})
	return err
}
