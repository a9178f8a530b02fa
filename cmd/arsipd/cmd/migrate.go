package cmd

import (
	"github.com/apex/log"
	"github.com/arsipku/arsipd/pkg/arsipdb"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the arsipd tables",
	Run: func(cmd *cobra.Command, args []string) {
		db := arsipdb.MustConnectToDB()
		if err := arsipdb.RunMigrations(db); err != nil {
			log.Fatalf("Migrations failed: %s", err)
		}
		log.Infof("Migrations complete")
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
