package main

import (
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	cache "github.com/moonsters/evolution-cache"
	"github.com/moonsters/evolution-cache/pokeapi"
)

func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, errors.Errorf("invalid moonster id %q", arg)
	}
	return id, nil
}

func newPokeAPIClient() *pokeapi.Client {
	return pokeapi.NewClient(
		pokeapi.WithBaseURL(cfg.PokeAPI.BaseURL),
		pokeapi.WithTimeout(cfg.PokeAPI.Timeout),
		pokeapi.WithRateLimit(cfg.PokeAPI.RateLimit, cfg.PokeAPI.Burst),
	)
}

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Print a cached evolution record without fetching",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			s := openSession(cmd.Context())
			defer s.Close()

			rec, ok := s.cache.Get(id)
			if !ok {
				return errors.Errorf("moonster %d is not cached", id)
			}
			return printYAML(cmd, rec)
		},
	}
}

func newFetchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch <id>",
		Short: "Print an evolution record, fetching and caching it on a miss",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			s := openSession(cmd.Context())
			defer s.Close()

			rec, err := cache.NewResolver(s.cache, newPokeAPIClient()).Resolve(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printYAML(cmd, rec)
		},
	}
}

func newIDsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ids",
		Short: "List the cached ids",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := openSession(cmd.Context())
			defer s.Close()

			return printYAML(cmd, map[string]any{
				"persistent": s.cache.Persistent(),
				"ids":        s.cache.IDs(),
			})
		},
	}
}
