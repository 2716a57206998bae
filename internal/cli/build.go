package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/beevik/etree"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/wabisabi926/script.skinshortcuts/internal/builder"
	"github.com/wabisabi926/script.skinshortcuts/internal/config"
	"github.com/wabisabi926/script.skinshortcuts/internal/loaders"
	"github.com/wabisabi926/script.skinshortcuts/internal/logging"
)

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().String("skin-dir", ".", "skin directory holding templates.xml and menus.xml")
	buildCmd.Flags().String("output", "", "output path for the generated includes file")
	buildCmd.Flags().String("config", "", "path to skinshortcuts.yaml")
	buildCmd.Flags().String("container", "", "menu container id bound by visibility conditions")

	for _, flag := range []string{"skin-dir", "output", "config", "container"} {
		if err := viper.BindPFlag(flag, buildCmd.Flags().Lookup(flag)); err != nil {
			panic(err)
		}
	}
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Generate the includes file",
	Long:  "Load menus, templates and property fallbacks, then generate the skin includes file.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(viper.GetString("config"), viper.GetString("skin-dir"))
		if err != nil {
			return err
		}
		if output := viper.GetString("output"); output != "" {
			cfg.OutputPath = output
		}
		if container := viper.GetString("container"); container != "" {
			cfg.Container = container
		}

		return runBuild(cfg)
	},
}

func runBuild(cfg *config.BuildConfig) error {
	log := logging.New("build")

	schema, err := loaders.LoadTemplates(cfg.TemplatesFile)
	if err != nil {
		return fmt.Errorf("load templates: %w", err)
	}

	menuConfig, err := loaders.LoadMenus(cfg.MenusFile)
	if err != nil {
		return fmt.Errorf("load menus: %w", err)
	}

	propertySchema, err := loaders.LoadProperties(cfg.PropertiesFile)
	if err != nil {
		return fmt.Errorf("load properties: %w", err)
	}

	assembler := builder.NewAssembler(schema, menuConfig.Menus, cfg.Container, propertySchema)
	doc, err := assembler.Assemble()
	if err != nil {
		return fmt.Errorf("assemble includes: %w", err)
	}

	if err := writeDocumentAtomic(doc, cfg.OutputPath); err != nil {
		return fmt.Errorf("write %s: %w", cfg.OutputPath, err)
	}

	log.Info().
		Str("run", assembler.RunID()).
		Str("output", cfg.OutputPath).
		Msg("includes file written")
	return nil
}

// writeDocumentAtomic serializes to a temp file in the target directory and
// renames it into place.
func writeDocumentAtomic(doc *etree.Document, path string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".includes-*.xml")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	tmp.Close()

	if err := doc.WriteToFile(tmpPath); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}
