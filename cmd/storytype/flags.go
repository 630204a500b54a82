package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/verte-zerg/storytype/internal/config"
)

const envPrefix = "STORYTYPE"

// bindEnv copies STORYTYPE_* environment values into flags the user did not
// set. Flags changed this way count as set, so the config file cannot
// override them.
func bindEnv(cmd *cobra.Command) error {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	var bindErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if bindErr != nil {
			return
		}
		envVarSuffix := strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))
		if err := v.BindEnv(f.Name, fmt.Sprintf("%s_%s", envPrefix, envVarSuffix)); err != nil {
			bindErr = fmt.Errorf("failed to bind env for %s: %w", f.Name, err)
			return
		}
		if !f.Changed && v.IsSet(f.Name) {
			if err := cmd.Flags().Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name))); err != nil {
				bindErr = fmt.Errorf("invalid %s_%s: %w", envPrefix, envVarSuffix, err)
			}
		}
	})
	return bindErr
}

// applyFileConfig fills flags that are still unset from the config file.
func applyFileConfig(cmd *cobra.Command, fileCfg config.FileConfig) error {
	applyStringConfig(cmd, "user", &opts.user, fileCfg.Player.User)
	applyStringConfig(cmd, "log-level", &opts.logLevel, fileCfg.Log.Level)
	applyStringConfig(cmd, "log-format", &opts.logFormat, fileCfg.Log.Format)
	applyStringConfig(cmd, "log-file", &opts.logFile, fileCfg.Log.Path)
	applyStringConfig(cmd, "corpus", &opts.corpus, fileCfg.Game.Corpus)
	applyIntConfig(cmd, "fps", &opts.fps, fileCfg.Game.FPS)
	applyIntConfig(cmd, "live-window", &opts.liveWindow, fileCfg.Game.LiveWindow)
	if err := applyDurationConfig(cmd, "initial-delay", &opts.initialDelay, fileCfg.Game.InitialDelay); err != nil {
		return err
	}
	if err := applyDurationConfig(cmd, "delay-step", &opts.delayStep, fileCfg.Game.DelayStep); err != nil {
		return err
	}
	return applyDurationConfig(cmd, "sample-interval", &opts.sampleInterval, fileCfg.Game.SampleInterval)
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil || flagChanged(cmd, name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil || flagChanged(cmd, name) {
		return
	}
	*target = *value
}

func applyDurationConfig(cmd *cobra.Command, name string, target *time.Duration, value *string) error {
	if value == nil || flagChanged(cmd, name) {
		return nil
	}
	d, err := time.ParseDuration(*value)
	if err != nil {
		return fmt.Errorf("invalid %s in config: %w", name, err)
	}
	*target = d
	return nil
}

// flagChanged also treats flags the command does not define as set, so their
// file values are left alone.
func flagChanged(cmd *cobra.Command, name string) bool {
	f := cmd.Flags().Lookup(name)
	return f == nil || f.Changed
}
