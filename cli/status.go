package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/AjianNie/TelegramForwarder2/config"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "显示配置和规则概况",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		rules, err := store.ListRules()
		if err != nil {
			return err
		}
		enabled := 0
		for _, r := range rules {
			if r.Enabled {
				enabled++
			}
		}

		if statusJSON {
			out := map[string]interface{}{
				"rules_total":   len(rules),
				"rules_enabled": enabled,
				"rss_enabled":   cfg.RSS.Enabled,
				"ai_model":      cfg.AI.DefaultModel,
				"db_path":       cfg.Storage.DBPath,
			}
			return json.NewEncoder(os.Stdout).Encode(out)
		}

		fmt.Printf("规则: %d 条，启用 %d 条\n", len(rules), enabled)
		fmt.Printf("数据库: %s\n", cfg.Storage.DBPath)
		if cfg.AI.DefaultModel != "" {
			fmt.Printf("AI 模型: %s\n", cfg.AI.DefaultModel)
		} else {
			fmt.Println("AI 改写: 未配置")
		}
		if cfg.RSS.Enabled {
			fmt.Printf("RSS 服务: http://%s:%d\n", cfg.RSS.Host, cfg.RSS.Port)
		} else {
			fmt.Println("RSS 服务: 关闭")
		}
		return nil
	},
}

func init() {
	statusCmd.Flags().BoolVarP(&statusJSON, "json", "j", false, "以 JSON 输出")
}
