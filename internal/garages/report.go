package garages

import (
	"bufio"
	"io"
)

// GarageStays holds the stays made at one garage, in chronological order.
type GarageStays struct {
	Garage Garage
	Stays  []*Stay
}

// GroupByGarage groups stays by garage. Groups come out in the order their
// garage first appears in stays; they are never sorted by name.
func GroupByGarage(stays []*Stay) []GarageStays {
	index := make(map[Garage]int)
	var groups []GarageStays
	for _, s := range stays {
		i, ok := index[s.garage]
		if !ok {
			i = len(groups)
			index[s.garage] = i
			groups = append(groups, GarageStays{Garage: s.garage})
		}
		groups[i].Stays = append(groups[i].Stays, s)
	}
	return groups
}

// PrintStays writes one header per garage followed by its stays, one per
// indented line:
//
//	Garage(name=Alpha):
//		entry=13/11/2024, exit=13/11/2024
//	Garage(name=Beta):
//		entry=14/11/2024, ongoing
func PrintStays(w io.Writer, stays []*Stay) error {
	bw := bufio.NewWriter(w)
	for _, group := range GroupByGarage(stays) {
		if _, err := bw.WriteString(group.Garage.String() + ":\n"); err != nil {
			return err
		}
		for _, s := range group.Stays {
			if _, err := bw.WriteString("\t" + s.String() + "\n"); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}
