package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "tgforwarder",
	Short: "Telegram 消息转发器",
	Long: `tgforwarder 按规则在 Telegram 会话间转发消息，
支持关键字过滤、文本替换、AI 改写、媒体组、评论按钮、
RSS 条目生成和外部推送。`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "配置文件路径（默认搜索 .tgforwarder/ 和 ~/.tgforwarder/）")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute 运行根命令
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	return nil
}
