package seeder

import (
	"strings"
	"unicode"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"

	"github.com/orgspace-systems/orgspace-stack/common/records"
)

// Generator produces fake directory records that pass client-side
// validation. The same seed always yields the same records.
type Generator struct {
	faker *gofakeit.Faker
	used  map[string]bool
}

// NewGenerator creates a Generator. A zero seed picks a random one.
func NewGenerator(seed int64) *Generator {
	return &Generator{
		faker: gofakeit.New(seed),
		used:  make(map[string]bool),
	}
}

// unique retries gen until it yields a value not handed out before.
func (g *Generator) unique(gen func() string) string {
	for i := 0; ; i++ {
		v := gen()
		if i > 20 {
			v += g.faker.DigitN(3)
		}
		if !g.used[strings.ToLower(v)] {
			g.used[strings.ToLower(v)] = true
			return v
		}
	}
}

// lettersOnly keeps ASCII letters and spaces.
func lettersOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || r == ' ') {
			return r
		}
		return -1
	}, s)
}

// description joins random words until it meets the minimum length.
func (g *Generator) description() string {
	var words []string
	for n := 0; n < records.MinDescriptionLength || len(words) < 3; {
		w := lettersOnly(g.faker.Word())
		if w == "" {
			continue
		}
		words = append(words, w)
		n += len(w) + 1
	}
	d := strings.Join(words, " ")
	return strings.ToUpper(d[:1]) + d[1:]
}

// Department returns a department with a unique name.
func (g *Generator) Department() records.DepartmentInput {
	name := g.unique(func() string {
		return g.faker.JobDescriptor() + " " + g.faker.JobLevel()
	})
	return records.DepartmentInput{Name: name, Description: g.description()}
}

// Employee returns an employee in one of departments with one of roles.
func (g *Generator) Employee(departments []string, roles []records.Role, password string) records.NewEmployee {
	first, last := g.faker.FirstName(), g.faker.LastName()
	userID := g.unique(func() string {
		id := strings.ToLower(lettersOnly(first) + "." + lettersOnly(last))
		if len(id) > 40 {
			id = id[:40]
		}
		return id
	})

	// Whole hundreds keep grouped report totals readable.
	salary := decimal.NewFromInt(int64(g.faker.IntRange(150, 1500)) * 100)

	return records.NewEmployee{
		UserID:     userID,
		FullName:   first + " " + last,
		Password:   password,
		Salary:     salary,
		Role:       g.role(roles),
		Position:   g.faker.JobTitle(),
		Department: departments[g.faker.IntRange(0, len(departments)-1)],
	}
}

// role favors the least privileged of roles: most seeded people are
// employees, some are managers, a few are HR.
func (g *Generator) role(roles []records.Role) records.Role {
	if len(roles) == 1 {
		return roles[0]
	}
	weights := map[records.Role]int{
		records.RoleEmployee: 80,
		records.RoleManager:  15,
		records.RoleHR:       5,
		records.RoleAdmin:    1,
	}
	total := 0
	for _, r := range roles {
		total += weights[r]
	}
	pick := g.faker.IntRange(1, total)
	for _, r := range roles {
		pick -= weights[r]
		if pick <= 0 {
			return r
		}
	}
	return roles[len(roles)-1]
}
