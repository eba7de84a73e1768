package core

import "fmt"

// person builds a record with the fields the pipeline looks at.
func person(id int, last, first string, age int, g Gender, city string) Record {
	return Record{
		ID:        id,
		FirstName: first,
		LastName:  last,
		Age:       age,
		Gender:    g,
		Phone:     fmt.Sprintf("+7 900 %03d", id),
		Email:     fmt.Sprintf("user%d@example.com", id),
		Address:   Address{Country: "Russia", City: city, Street: "Lenina 1"},
	}
}

// people generates n records with distinct ids, names and ages.
func people(n int) []Record {
	out := make([]Record, n)
	for i := range out {
		g := GenderMale
		if i%2 == 1 {
			g = GenderFemale
		}
		out[i] = person(i+1, fmt.Sprintf("Last%03d", i+1), fmt.Sprintf("First%03d", i+1), 18+i, g, "Kazan")
	}
	return out
}

func ids(records []Record) []int {
	out := make([]int, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}
