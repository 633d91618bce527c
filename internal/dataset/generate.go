package dataset

import (
	"math/rand"

	"github.com/go-faker/faker/v4"

	"github.com/sqlstage/sqlstage/internal/types"
)

var generatedDepartments = []int64{10, 20, 30}

// GenerateEmployees builds an employees relation of n rows for volume demos,
// where the handwritten fixtures are too small to make ordering and partition
// behavior interesting. Ids, department assignment and salaries derive from
// the seed, so the relational shape of a run is reproducible; names and
// emails come from faker and vary. Roughly one row in ten gets a NULL
// department and one in twelve a NULL salary, keeping the NULL paths visible
// at any size.
func GenerateEmployees(n int, seed int64) *types.Relation {
	rng := rand.New(rand.NewSource(seed))

	rows := make([]types.Row, n)
	for i := range rows {
		var department any
		if rng.Intn(10) == 0 {
			department = nil
		} else {
			department = generatedDepartments[rng.Intn(len(generatedDepartments))]
		}

		var salary any
		if rng.Intn(12) == 0 {
			salary = nil
		} else {
			salary = int64(rng.Intn(90000) + 30000)
		}

		rows[i] = types.Row{
			"id":            int64(i + 1),
			"name":          faker.Name(),
			"email":         faker.Email(),
			"department_id": department,
			"salary":        salary,
		}
	}

	return types.MustRelation("employees", []string{"id", "name", "email", "department_id", "salary"}, rows)
}
