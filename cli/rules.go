package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/AjianNie/TelegramForwarder2/config"
	"github.com/AjianNie/TelegramForwarder2/storage"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "管理转发规则",
}

var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "列出所有规则",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		rules, err := store.ListRules()
		if err != nil {
			return err
		}
		if len(rules) == 0 {
			fmt.Println("暂无规则")
			return nil
		}
		for _, r := range rules {
			state := "enabled"
			if !r.Enabled {
				state = "disabled"
			}
			fmt.Printf("#%d  %d -> %d  [%s]  mode=%s handle=%s\n",
				r.ID, r.SourceChatID, r.TargetChatID, state, r.ForwardMode, r.HandleMode)
		}
		return nil
	},
}

var rulesAddCmd = &cobra.Command{
	Use:   "add <source_chat_id> <target_chat_id>",
	Short: "添加规则",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		source, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid source chat id: %w", err)
		}
		target, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid target chat id: %w", err)
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		rule := &storage.Rule{SourceChatID: source, TargetChatID: target, Enabled: true}
		if err := store.CreateRule(rule); err != nil {
			return err
		}
		fmt.Printf("规则 #%d 已创建: %d -> %d\n", rule.ID, source, target)
		return nil
	},
}

var rulesExportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "导出规则到 YAML 文件",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.ExportRules(args[0]); err != nil {
			return err
		}
		fmt.Printf("规则已导出到 %s\n", args[0])
		return nil
	},
}

var rulesImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "从 YAML 文件导入规则",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		n, err := store.ImportRules(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("已导入 %d 条规则\n", n)
		return nil
	},
}

func init() {
	rulesCmd.AddCommand(rulesListCmd)
	rulesCmd.AddCommand(rulesAddCmd)
	rulesCmd.AddCommand(rulesExportCmd)
	rulesCmd.AddCommand(rulesImportCmd)
}

func openStore() (*storage.Store, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return storage.Open(config.ExpandUserPath(cfg.Storage.DBPath))
}
