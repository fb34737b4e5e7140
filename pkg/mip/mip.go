package mip

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

type Sense int

const (
	LessEqual Sense = iota
	GreaterEqual
	Equal
)

func (sense Sense) String() string {
	switch sense {
	case LessEqual:
		return "<="
	case GreaterEqual:
		return ">="
	case Equal:
		return "="
	default:
		return "?"
	}
}

// Term is coefficient * variable, where variables are indexed from 1 (as in DIMACS)
type Term struct {
	Variable    uint64
	Coefficient int64
}

type Constraint struct {
	Name  string
	Terms []Term
	Sense Sense
	RHS   int64
}

// Model is a minimization problem over binary variables 1..Variables
type Model struct {
	Variables   uint64
	Names       []string // Optional, Names[i] names variable i+1
	Objective   []Term
	Constraints []Constraint
}

// MIPSolution holds the value of every variable of a solved model
type MIPSolution struct {
	Values    []float64 // Values[i] is the value of variable i+1
	Objective float64
}

func (solution *MIPSolution) Value(variable uint64) float64 {
	if variable == 0 || variable > uint64(len(solution.Values)) {
		return 0
	}
	return solution.Values[variable-1]
}

func (model Model) Validate() error {
	if model.Names != nil && uint64(len(model.Names)) != model.Variables {
		return errors.Errorf("model names %d variables but declares %d", len(model.Names), model.Variables)
	}

	check := func(where string, terms []Term) error {
		for _, term := range terms {
			if term.Variable == 0 || term.Variable > model.Variables {
				return errors.Errorf("%v references undeclared variable %d", where, term.Variable)
			}
		}
		return nil
	}

	if err := check("objective", model.Objective); err != nil {
		return err
	}
	for i, constraint := range model.Constraints {
		if err := check(fmt.Sprintf("constraint %d (%v)", i, constraint.Name), constraint.Terms); err != nil {
			return err
		}
	}
	return nil
}

// Evaluate computes the objective value of the given variable values
func (model Model) Evaluate(values []float64) float64 {
	var objective float64
	for _, term := range model.Objective {
		if term.Variable != 0 && term.Variable <= uint64(len(values)) {
			objective += float64(term.Coefficient) * values[term.Variable-1]
		}
	}
	return objective
}

func (model Model) VariableName(variable uint64) string {
	if model.Names != nil && variable >= 1 && variable <= uint64(len(model.Names)) && model.Names[variable-1] != "" {
		return model.Names[variable-1]
	}
	return fmt.Sprintf("v%d", variable)
}

// ToLP renders the model in CPLEX LP format
func (model Model) ToLP(header ...string) string {
	var builder strings.Builder
	for _, line := range header {
		fmt.Fprintf(&builder, "\\ %v\n", line)
	}

	builder.WriteString("Minimize\n obj:")
	model.writeTerms(&builder, model.Objective)
	builder.WriteString("\nSubject To\n")

	for i, constraint := range model.Constraints {
		name := constraint.Name
		if name == "" {
			name = "c"
		}
		fmt.Fprintf(&builder, " %v_%d:", name, i)
		model.writeTerms(&builder, constraint.Terms)
		fmt.Fprintf(&builder, " %v %d\n", constraint.Sense, constraint.RHS)
	}

	builder.WriteString("Binaries\n")
	for variable := uint64(1); variable <= model.Variables; variable++ {
		fmt.Fprintf(&builder, " %v\n", model.VariableName(variable))
	}
	builder.WriteString("End\n")
	return builder.String()
}

func (model Model) writeTerms(builder *strings.Builder, terms []Term) {
	if len(terms) == 0 {
		builder.WriteString(" 0")
		return
	}

	for i, term := range terms {
		coefficient := term.Coefficient
		if coefficient < 0 {
			builder.WriteString(" -")
			coefficient = -coefficient
		} else if i > 0 {
			builder.WriteString(" +")
		}
		if coefficient != 1 {
			fmt.Fprintf(builder, " %d", coefficient)
		}
		fmt.Fprintf(builder, " %v", model.VariableName(term.Variable))
	}
}
