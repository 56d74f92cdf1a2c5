package reconstruction_test

import (
	"fmt"

	"morphoseg/pkg/connectivity"
	"morphoseg/pkg/grid"
	"morphoseg/pkg/reconstruction"
)

func ExampleByDilation() {
	mask, _ := grid.From2D([][]float64{{5, 3, 8, 2, 9}})
	marker, _ := grid.From2D([][]float64{{5, 0, 0, 0, 0}})

	out, err := reconstruction.ByDilation(marker, mask, connectivity.C4)
	if err != nil {
		panic(err)
	}
	fmt.Println(out.Data())
	// Output: [5 3 3 2 2]
}
