// ecctl is the command-line front end over the EC and mapping pipelines.
//
// Usage:
//
//	ecctl run-ec --ec-bundle bundle.json --iucs iucs.json --out out/
//	ecctl run-mapping --profiles profiles.json --mapping-config config.json --out out/
//	ecctl run-all --ec-bundle bundle.json --iucs iucs.json --mapping-config config.json --out out/
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/santoshpalla27/ec-resolver/ecmodel"
	"github.com/santoshpalla27/ec-resolver/ecpipeline"
	"github.com/santoshpalla27/ec-resolver/internal/canonjson"
	"github.com/santoshpalla27/ec-resolver/internal/platform"
)

func main() {
	app := &cli.App{
		Name:  "ecctl",
		Usage: "run the Effective Context and Mapping Resolution pipelines",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   platform.GetEnv("ECCTL_LOG_LEVEL", "info"),
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"ECCTL_LOG_LEVEL"},
			},
		},
		Before: func(c *cli.Context) error {
			platform.InitLogger(c.String("log-level"))
			return nil
		},
		Commands: []*cli.Command{
			runECCommand(),
			runMappingCommand(),
			runAllCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func commonInputFlags(extra ...cli.Flag) []cli.Flag {
	flags := []cli.Flag{
		&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Value: ".", Usage: "Output directory for artifacts"},
	}
	return append(flags, extra...)
}

func runECCommand() *cli.Command {
	return &cli.Command{
		Name:  "run-ec",
		Usage: "Run the Effective Context pipeline",
		Flags: commonInputFlags(
			&cli.StringFlag{Name: "ec-bundle", Required: true, Usage: "Path to the EC bundle JSON file"},
			&cli.StringFlag{Name: "iucs", Required: true, Usage: "Path to the IUC list JSON file"},
		),
		Action: func(c *cli.Context) error {
			bundle, err := loadECBundle(c.String("ec-bundle"))
			if err != nil {
				return exitParseError("input-parse-error", err)
			}
			iucs, err := loadIUCs(c.String("iucs"))
			if err != nil {
				return exitParseError("input-parse-error", err)
			}

			result, env := ecpipeline.RunECPipeline(*bundle, iucs)
			if env != nil {
				return emitEnvelope(env)
			}
			return writeArtifacts(c.String("out"), result.Artifacts)
		},
	}
}

func runMappingCommand() *cli.Command {
	return &cli.Command{
		Name:  "run-mapping",
		Usage: "Run the mapping resolution pipeline",
		Flags: commonInputFlags(
			&cli.StringFlag{Name: "profiles", Required: true, Usage: "Path to the profiles JSON file"},
			&cli.StringFlag{Name: "mapping-config", Required: true, Usage: "Path to the mapping config JSON file"},
		),
		Action: func(c *cli.Context) error {
			profiles, err := loadProfiles(c.String("profiles"))
			if err != nil {
				return exitParseError("mapping-input-parse-error", err)
			}
			cfg, err := loadMappingConfig(c.String("mapping-config"))
			if err != nil {
				return exitParseError("mapping-input-parse-error", err)
			}

			result, env := ecpipeline.RunMappingPipeline(profiles, *cfg)
			if env != nil {
				return emitEnvelope(env)
			}
			return writeArtifacts(c.String("out"), result.Artifacts)
		},
	}
}

func runAllCommand() *cli.Command {
	return &cli.Command{
		Name:  "run-all",
		Usage: "Run the EC pipeline followed by the mapping pipeline",
		Flags: commonInputFlags(
			&cli.StringFlag{Name: "ec-bundle", Required: true, Usage: "Path to the EC bundle JSON file"},
			&cli.StringFlag{Name: "iucs", Required: true, Usage: "Path to the IUC list JSON file"},
			&cli.StringFlag{Name: "mapping-config", Required: true, Usage: "Path to the mapping config JSON file"},
		),
		Action: func(c *cli.Context) error {
			bundle, err := loadECBundle(c.String("ec-bundle"))
			if err != nil {
				return exitParseError("input-parse-error", err)
			}
			iucs, err := loadIUCs(c.String("iucs"))
			if err != nil {
				return exitParseError("input-parse-error", err)
			}

			ecResult, env := ecpipeline.RunECPipeline(*bundle, iucs)
			if env != nil {
				return emitEnvelope(env)
			}
			if err := writeArtifacts(c.String("out"), ecResult.Artifacts); err != nil {
				return err
			}

			cfg, err := loadMappingConfig(c.String("mapping-config"))
			if err != nil {
				return exitParseError("mapping-input-parse-error", err)
			}

			profiles := buildProfiles(ecResult)
			mappingResult, env := ecpipeline.RunMappingPipeline(profiles, *cfg)
			if env != nil {
				return emitEnvelope(env)
			}
			return writeArtifacts(c.String("out"), mappingResult.Artifacts)
		},
	}
}

// buildProfiles reassembles the ProfileBundle map the mapping pipeline
// expects from the EC pipeline's own artifacts, so run-all can chain the
// two pipelines without round-tripping through disk.
func buildProfiles(ecResult *ecpipeline.ECResult) map[string]ecmodel.ProfileBundle {
	profiles := make(map[string]ecmodel.ProfileBundle, len(ecResult.ProfileIDs))
	for _, id := range ecResult.ProfileIDs {
		ec, _ := ecResult.Artifacts[fmt.Sprintf("step3-ec.%s.json", id)].(ecmodel.Buckets)
		schema, _ := ecResult.Artifacts[fmt.Sprintf("step4-profile.%s.json", id)].(*ecmodel.ProfileSchema)
		bundle := ecmodel.ProfileBundle{EC: ec}
		if schema != nil {
			bundle.ProfileSchema = *schema
		}
		profiles[id] = bundle
	}
	return profiles
}

func loadECBundle(path string) (*ecmodel.ECBundle, error) {
	var bundle ecmodel.ECBundle
	if err := loadJSON(path, &bundle); err != nil {
		return nil, err
	}
	return &bundle, nil
}

func loadIUCs(path string) ([]ecmodel.IUC, error) {
	var iucs []ecmodel.IUC
	if err := loadJSON(path, &iucs); err != nil {
		return nil, err
	}
	return iucs, nil
}

func loadProfiles(path string) (map[string]ecmodel.ProfileBundle, error) {
	var profiles map[string]ecmodel.ProfileBundle
	if err := loadJSON(path, &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

func loadMappingConfig(path string) (*ecmodel.MappingConfig, error) {
	var cfg ecmodel.MappingConfig
	if err := loadJSON(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

func exitParseError(prefix string, err error) error {
	env := ecmodel.NewEnvelope("Validation", fmt.Sprintf("%s:%s", prefix, err.Error()), nil)
	return emitEnvelope(env)
}

func emitEnvelope(env *ecmodel.Envelope) error {
	out, err := canonjson.Marshal(env)
	if err != nil {
		return fmt.Errorf("encoding envelope: %w", err)
	}
	fmt.Fprintln(os.Stdout, string(out))
	log.Error().Str("error", env.Error).Str("reason", env.Reason).Msg("pipeline aborted")
	os.Exit(2)
	return nil
}

func writeArtifacts(outDir string, artifacts map[string]any) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	for name, payload := range artifacts {
		data, err := canonjson.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encoding %s: %w", name, err)
		}
		if err := os.WriteFile(filepath.Join(outDir, name), data, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", name, err)
		}
		log.Info().Str("artifact", name).Msg("wrote artifact")
	}
	return nil
}
