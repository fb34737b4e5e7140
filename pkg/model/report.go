package model

import (
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// WriteResults writes the assigned topic of every student and group in the plain-text results format
func WriteResults(w io.Writer, modelInput ModelInput) error {
	var builder strings.Builder

	topicName := func(topic *int64) string {
		if topic == nil {
			return "None"
		}
		return fmt.Sprint(*topic)
	}

	builder.WriteString("### Student Assignment ###")
	for _, student := range modelInput.Students {
		fmt.Fprintf(&builder, "\nStudent %d assigned to topic %v", student.Id, topicName(student.AssignedTopic))
	}

	builder.WriteString("\n### Group Assignment ###")
	for _, group := range modelInput.Groups {
		fmt.Fprintf(&builder, "\nGroup %d assigned to topic %v", group.Id, topicName(group.AssignedTopic))
	}
	builder.WriteString("\n")

	_, err := io.WriteString(w, builder.String())
	return errors.Wrap(err, "cannot write results")
}

// WriteSolutionReport writes a detailed, human oriented summary of the assignment
func WriteSolutionReport(w io.Writer, assignment *Assignment, firstChoiceBound int) error {
	var builder strings.Builder

	builder.WriteString("\n#########   Solution Report   ###########\n\n")
	builder.WriteString("Student Assignment \n\n")
	for _, placement := range assignment.Students {
		fmt.Fprintf(&builder, "Student %d assigned to topic %d. Rank of topic: %d\n", placement.Id, placement.Topic, placement.Rank)
	}

	builder.WriteString("\n\nGroup Assignment \n\n")
	for _, placement := range assignment.Groups {
		fmt.Fprintf(&builder, "Group %d assigned to topic %d. Rank of topic: %d\n", placement.Id, placement.Topic, placement.Rank)
	}

	builder.WriteString("\n\nActive Topics \n\n")
	for _, usage := range lo.Filter(assignment.Topics, func(usage TopicUsage, _ int) bool { return usage.Mode != 0 }) {
		fmt.Fprintf(&builder, "Topic %d (supervisor %d) in mode %d with %d occupants\n", usage.Topic, usage.Supervisor, usage.Mode, usage.Occupancy)
	}

	firstChoices := lo.CountBy(assignment.Students, func(placement Placement) bool { return placement.Rank == 1 })
	fmt.Fprintf(&builder, "\nStudents with rank 1: %d (at most %d possible)\n", firstChoices, firstChoiceBound)
	fmt.Fprintf(&builder, "Total cost: %d\n", assignment.Cost)
	builder.WriteString("################## FINISHED ##################\n")

	_, err := io.WriteString(w, builder.String())
	return errors.Wrap(err, "cannot write solution report")
}
