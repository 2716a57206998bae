package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/wabisabi926/script.skinshortcuts/internal/config"
	"github.com/wabisabi926/script.skinshortcuts/internal/loaders"
)

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.AddCommand(listTemplatesCmd)
	listCmd.AddCommand(listMenusCmd)

	listCmd.PersistentFlags().String("skin-dir", ".", "skin directory holding templates.xml and menus.xml")
	if err := viper.BindPFlag("list.skin-dir", listCmd.PersistentFlags().Lookup("skin-dir")); err != nil {
		panic(err)
	}
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Inspect loaded configuration",
	Long:  "List the templates and menus a build would process, for debugging skin configuration.",
}

var listTemplatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List templates",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Default(viper.GetString("list.skin-dir"))

		schema, err := loaders.LoadTemplates(cfg.TemplatesFile)
		if err != nil {
			return fmt.Errorf("load templates: %w", err)
		}

		rows := make([][]string, 0, len(schema.Templates))
		for _, tmpl := range schema.Templates {
			for _, output := range tmpl.GetOutputs() {
				rows = append(rows, []string{
					output.Include,
					string(tmpl.Build),
					output.Suffix,
					tmpl.TemplateOnly,
					strconv.Itoa(len(tmpl.Properties)),
				})
			}
		}
		return writeTable(os.Stdout, []string{"INCLUDE", "BUILD", "SUFFIX", "TEMPLATEONLY", "PROPERTIES"}, rows)
	},
}

var listMenusCmd = &cobra.Command{
	Use:   "menus",
	Short: "List menus",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Default(viper.GetString("list.skin-dir"))

		menuConfig, err := loaders.LoadMenus(cfg.MenusFile)
		if err != nil {
			return fmt.Errorf("load menus: %w", err)
		}

		rows := make([][]string, 0, len(menuConfig.Menus))
		for _, menu := range menuConfig.Menus {
			rows = append(rows, []string{
				menu.Name,
				formatYesNo(menu.IsSubmenu),
				strconv.Itoa(len(menu.Items)),
			})
		}
		return writeTable(os.Stdout, []string{"MENU", "SUBMENU", "ITEMS"}, rows)
	},
}
