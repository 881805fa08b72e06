package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print catalog statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		store, err := openCatalog(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		s, err := store.Stats(ctx)
		if err != nil {
			return err
		}

		fmt.Printf("tracks:         %d\n", s.TotalTracks)
		fmt.Printf("postings:       %d\n", s.TotalPostings)
		fmt.Printf("unique hashes:  %d\n", s.UniqueHashes)
		fmt.Printf("albums:         %d\n", s.TotalAlbums)
		fmt.Printf("artists:        %d\n", s.TotalArtists)
		fmt.Printf("index size:     %d bytes\n", s.DBSizeBytes)
		return nil
	},
}
