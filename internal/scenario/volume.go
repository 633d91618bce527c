package scenario

import (
	"fmt"

	"github.com/sqlstage/sqlstage/internal/dataset"
	"github.com/sqlstage/sqlstage/internal/eval"
)

// Volume builds a left-join walkthrough over a generated employees relation.
// The handwritten fixtures keep walkthroughs readable at a handful of steps;
// this one exists to exercise the transport with as many steps as asked for.
// The relational shape of a run follows the seed, so it can be replayed.
func Volume(n int, seed int64) (*Walkthrough, error) {
	if n <= 0 {
		return nil, fmt.Errorf("volume walkthrough needs a positive row count, got %d", n)
	}
	return joinWalkthrough("volume-left-join",
		fmt.Sprintf("Left join over %d generated employees", n),
		[]string{
			"SELECT employees.name, departments.name",
			"FROM employees",
			"LEFT JOIN departments",
			"  ON employees.department_id = departments.id;",
		}, []int{3, 4},
		dataset.GenerateEmployees(n, seed), dataset.MustLoad("departments"),
		eval.JoinDescriptor{Kind: eval.JoinLeft, LeftKey: "department_id", RightKey: "id"},
		fmt.Sprintf("The fixture left join scaled up: %d generated employees against the departments table. Departments 10 and 30 match, everything else pads with NULLs.", n))
}
