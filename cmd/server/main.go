package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:   "infrawatch",
		Short: "InfraWatch 市政设施损伤上报服务",
		Long: `InfraWatch 接收市民上传的道路设施损伤照片，自动识别损伤类型，
供官员审核、派工，并管理施工通告 PDF。不带子命令时等同于 serve。`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "配置文件路径（默认查找 ./config/config.yaml 与 ./config.yaml）")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(userCmd())
	rootCmd.AddCommand(hashPasswordCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
