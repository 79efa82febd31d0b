// cmd/contentcheck/main.go
//
// contentcheck はカタログデータ（JSON）の整備用ツールです。
//   audit  : データファイルの検証（ID 重複、必須フィールド、難易度など）
//   import : 翻訳チームから受け取る xlsx を words.json 形式に変換
package main

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:           "contentcheck",
		Short:         "Validate and import Malayalam trainer content data",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	var auditDir string
	auditCmd := &cobra.Command{
		Use:   "audit",
		Short: "Validate the catalog data files",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAudit(auditDir)
		},
	}
	auditCmd.Flags().StringVar(&auditDir, "dir", "internal/catalog/data", "directory containing the catalog JSON files")

	var importCfg importConfig
	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Convert a vocabulary xlsx sheet into words.json format",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(importCfg)
		},
	}
	importCmd.Flags().StringVar(&importCfg.File, "file", "", "path to the xlsx file (required)")
	importCmd.Flags().StringVar(&importCfg.Sheet, "sheet", "Sheet1", "sheet name to read")
	importCmd.Flags().StringVar(&importCfg.Out, "out", "words.json", "output JSON file")
	importCmd.MarkFlagRequired("file")

	root.AddCommand(auditCmd, importCmd)

	if err := root.Execute(); err != nil {
		color.New(color.FgHiRed).Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
