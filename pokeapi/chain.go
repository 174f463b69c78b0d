package pokeapi

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/moonsters/evolution-cache/types"
)

type namedResource struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type speciesResponse struct {
	ID             int    `json:"id"`
	Name           string `json:"name"`
	EvolutionChain struct {
		URL string `json:"url"`
	} `json:"evolution_chain"`
}

type chainResponse struct {
	ID    int       `json:"id"`
	Chain chainLink `json:"chain"`
}

type chainLink struct {
	Species          namedResource     `json:"species"`
	EvolutionDetails []evolutionDetail `json:"evolution_details"`
	EvolvesTo        []chainLink       `json:"evolves_to"`
}

type evolutionDetail struct {
	Trigger               *namedResource `json:"trigger"`
	Item                  *namedResource `json:"item"`
	HeldItem              *namedResource `json:"held_item"`
	KnownMove             *namedResource `json:"known_move"`
	KnownMoveType         *namedResource `json:"known_move_type"`
	Location              *namedResource `json:"location"`
	PartySpecies          *namedResource `json:"party_species"`
	PartyType             *namedResource `json:"party_type"`
	TradeSpecies          *namedResource `json:"trade_species"`
	Gender                *int           `json:"gender"`
	MinLevel              *int           `json:"min_level"`
	MinHappiness          *int           `json:"min_happiness"`
	MinBeauty             *int           `json:"min_beauty"`
	MinAffection          *int           `json:"min_affection"`
	RelativePhysicalStats *int           `json:"relative_physical_stats"`
	TimeOfDay             string         `json:"time_of_day"`
	NeedsOverworldRain    bool           `json:"needs_overworld_rain"`
	TurnUpsideDown        bool           `json:"turn_upside_down"`
}

/*
flatten walks the chain depth first, parent before children.

Every node becomes a chain stage; every parent→child edge becomes one
condition, in the same walk order. Branching families (one base, several
evolutions) therefore produce more conditions than adjacent chain pairs.
*/
func flatten(root chainLink, spriteURL string) (types.EvolutionRecord, error) {
	rec := types.EvolutionRecord{
		Chain:      []types.Moonster{},
		Conditions: []types.Condition{},
	}

	var walk func(link chainLink) error
	walk = func(link chainLink) error {
		id, err := speciesID(link.Species.URL)
		if err != nil {
			return err
		}
		rec.Chain = append(rec.Chain, types.Moonster{
			Name:  link.Species.Name,
			Image: fmt.Sprintf(spriteURL, id),
			ID:    id,
		})
		for _, next := range link.EvolvesTo {
			rec.Conditions = append(rec.Conditions, condition(link.Species.Name, next))
		}
		for _, next := range link.EvolvesTo {
			if err := walk(next); err != nil {
				return err
			}
		}
		return nil
	}

	if err := walk(root); err != nil {
		return types.EvolutionRecord{}, err
	}
	return rec, nil
}

func condition(from string, to chainLink) types.Condition {
	c := types.Condition{From: from, To: to.Species.Name}
	var methods []string
	for _, d := range to.EvolutionDetails {
		if c.Trigger == "" && d.Trigger != nil {
			c.Trigger = d.Trigger.Name
		}
		if s := d.describe(); s != "" {
			methods = append(methods, s)
		}
	}
	c.Details = strings.Join(methods, " or ")
	return c
}

// describe renders the requirements that are set, in a fixed order.
func (d evolutionDetail) describe() string {
	var parts []string
	name := func(key string, r *namedResource) {
		if r != nil && r.Name != "" {
			parts = append(parts, key+" "+r.Name)
		}
	}
	num := func(key string, v *int) {
		if v != nil {
			parts = append(parts, key+" "+strconv.Itoa(*v))
		}
	}

	num("min_level", d.MinLevel)
	name("item", d.Item)
	name("held_item", d.HeldItem)
	num("min_happiness", d.MinHappiness)
	num("min_beauty", d.MinBeauty)
	num("min_affection", d.MinAffection)
	name("known_move", d.KnownMove)
	name("known_move_type", d.KnownMoveType)
	name("location", d.Location)
	if d.TimeOfDay != "" {
		parts = append(parts, "time_of_day "+d.TimeOfDay)
	}
	num("gender", d.Gender)
	num("relative_physical_stats", d.RelativePhysicalStats)
	name("party_species", d.PartySpecies)
	name("party_type", d.PartyType)
	name("trade_species", d.TradeSpecies)
	if d.NeedsOverworldRain {
		parts = append(parts, "needs_overworld_rain")
	}
	if d.TurnUpsideDown {
		parts = append(parts, "turn_upside_down")
	}
	return strings.Join(parts, ", ")
}

// speciesID takes the id from ".../pokemon-species/25/".
func speciesID(url string) (int, error) {
	trimmed := strings.TrimRight(url, "/")
	i := strings.LastIndex(trimmed, "/")
	id, err := strconv.Atoi(trimmed[i+1:])
	if err != nil {
		return 0, errors.Errorf("no species id in %q", url)
	}
	return id, nil
}
