package seatmap

import "github.com/cinebook/booking-api/internal/model"

// CellStatus is the tri-state rendering of a grid cell used when the
// caller asks for detailed occupancy.
type CellStatus string

const (
	CellFree     CellStatus = "free"
	CellReserved CellStatus = "reserved"
	CellPaid     CellStatus = "paid"
)

// Cell is one position of the rendered grid. Occupied is set in boolean
// mode, Status in detailed mode; the unused field is omitted from JSON.
type Cell struct {
	RowLetter  string     `json:"row_letter"`
	SeatNumber uint32     `json:"seat_number"`
	Label      string     `json:"label"`
	Occupied   *bool      `json:"occupied,omitempty"`
	Status     CellStatus `json:"status,omitempty"`
}

// Build renders the full rows×columns grid from an occupancy snapshot.
// The result is row-major with row A first and contains every declared
// cell exactly once, including free ones; an empty snapshot yields an
// all-free grid. When detailed is false cells carry a boolean Occupied,
// otherwise a tri-state Status. Build never touches storage, which keeps
// it independently testable.
func Build(rows, columns uint32, occupancy []model.SeatOccupancy, detailed bool) [][]Cell {
	bySeat := make(map[string]model.TicketStatus, len(occupancy))
	for _, o := range occupancy {
		bySeat[Label(o.RowLetter, o.SeatNumber)] = o.Status
	}

	grid := make([][]Cell, 0, rows)
	for r := uint32(1); r <= rows; r++ {
		letter, _ := RowLetter(r) // r <= rows <= 26 by session invariant
		row := make([]Cell, 0, columns)
		for n := uint32(1); n <= columns; n++ {
			cell := Cell{
				RowLetter:  letter,
				SeatNumber: n,
				Label:      Label(letter, n),
			}
			st, taken := bySeat[cell.Label]
			if detailed {
				switch {
				case !taken:
					cell.Status = CellFree
				case st == model.StatusPaid:
					cell.Status = CellPaid
				default:
					cell.Status = CellReserved
				}
			} else {
				occ := taken
				cell.Occupied = &occ
			}
			row = append(row, cell)
		}
		grid = append(grid, row)
	}
	return grid
}
