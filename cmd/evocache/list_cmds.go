package main

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	cache "github.com/moonsters/evolution-cache"
	"github.com/moonsters/evolution-cache/eviction"
	"github.com/moonsters/evolution-cache/lists"
	"github.com/moonsters/evolution-cache/types"
)

func captureConfig(cmd *cobra.Command) (lists.Config, error) {
	return lists.CaptureList(), nil
}

func comparisonConfig(cmd *cobra.Command) (lists.Config, error) {
	lc := lists.ComparisonList()
	name, err := cmd.Flags().GetString("policy")
	if err != nil {
		return lc, err
	}
	lc.Policy, err = eviction.ParsePolicyType(name)
	return lc, err
}

/*
newListCmd builds the add/remove/list subcommands for one capped list.

add looks the moonster up in the evolution cache chains first and only
fetches when no cached chain contains it.
*/
func newListCmd(use, short string, listConfig func(*cobra.Command) (lists.Config, error)) *cobra.Command {
	parent := &cobra.Command{Use: use, Short: short}
	if use == "compare" {
		parent.PersistentFlags().String("policy", string(eviction.FIFO), "which entry a full list drops: fifo, lru or lfu")
	}

	open := func(cmd *cobra.Command) (*session, *lists.List, error) {
		lc, err := listConfig(cmd)
		if err != nil {
			return nil, nil, err
		}
		s := openSession(cmd.Context())
		backend := s.backend
		if !s.cache.Persistent() {
			backend = nil
		}
		l := lists.New(lc, backend)
		l.Load(cmd.Context())
		return s, l, nil
	}

	add := &cobra.Command{
		Use:   "add <id>",
		Short: "Add a moonster",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			s, l, err := open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			m, err := findMoonster(cmd, s.cache, id)
			if err != nil {
				return err
			}
			if err := l.Add(cmd.Context(), m); err != nil {
				return err
			}
			return printYAML(cmd, l.Items())
		},
	}

	remove := &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a moonster",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			s, l, err := open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			if !l.Remove(cmd.Context(), id) {
				return errors.Errorf("moonster %d is not in the %s list", id, use)
			}
			return printYAML(cmd, l.Items())
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "Print the list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, l, err := open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()
			return printYAML(cmd, map[string]any{
				"limit": l.Limit(),
				"items": l.Items(),
			})
		},
	}

	parent.AddCommand(add, remove, list)
	return parent
}

func findMoonster(cmd *cobra.Command, c *cache.EvolutionCache, id int) (types.Moonster, error) {
	for _, cached := range c.IDs() {
		rec, _ := c.Get(cached)
		if m, ok := rec.Find(id); ok {
			return m, nil
		}
	}
	rec, err := cache.NewResolver(c, newPokeAPIClient()).Resolve(cmd.Context(), id)
	if err != nil {
		return types.Moonster{}, err
	}
	if m, ok := rec.Find(id); ok {
		return m, nil
	}
	return types.Moonster{}, errors.Errorf("moonster %d is not part of its own evolution chain", id)
}
