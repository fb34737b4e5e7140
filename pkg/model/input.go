package model

import (
	"bytes"
	"encoding/json"
	"math"
	"math/bits"
	"os"
	"reflect"
	"slices"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

var ErrInvalidInput = errors.New("invalid input")

type RawStudent struct {
	Id          uint64 `mapstructure:"id"`
	Preferences any    `mapstructure:"preferences" validate:"required"` // Either a list of ranks ordered by topic or an object keyed by topic id
}

type RawGroup struct {
	Id          uint64 `mapstructure:"id"`
	Preferences any    `mapstructure:"preferences" validate:"required"`
	Size        uint64 `mapstructure:"size" validate:"gte=1"`
}

type RawSupervisor struct {
	Id        uint64  `mapstructure:"id"`
	TopicIds  []int64 `mapstructure:"topic_ids" validate:"required,min=1"`
	MinTopics uint64  `mapstructure:"min_topics"`
	MaxTopics uint64  `mapstructure:"max_topics" validate:"gtefield=MinTopics"`
}

type RawModelInput struct {
	Students    []RawStudent    `mapstructure:"students" validate:"dive"`
	Groups      []RawGroup      `mapstructure:"groups" validate:"dive"`
	Supervisors []RawSupervisor `mapstructure:"supervisors" validate:"required,min=1,dive"`
}

type Student struct {
	Id            uint64
	Preferences   []uint64         // Preferences[i] is the rank given to topic Topics[i]
	Ranks         map[int64]uint64 // Topic to rank
	AssignedTopic *int64           // Nil until a feasible assignment is found
}

type Group struct {
	Id            uint64
	Preferences   []uint64
	Ranks         map[int64]uint64
	Size          uint64
	AssignedTopic *int64
}

type Supervisor struct {
	Id        uint64
	TopicIds  []int64
	MinTopics uint64
	MaxTopics uint64
}

type ModelInput struct {
	Students    []Student
	Groups      []Group
	Supervisors []Supervisor
	Topics      []int64 // Sorted and contiguous
}

// Position of the topic inside Topics
func (input ModelInput) TopicIndex(topic int64) uint64 {
	return uint64(topic - input.Topics[0])
}

func (input ModelInput) Topic(index uint64) int64 {
	return input.Topics[0] + int64(index)
}

// InputFromJson reads the three datasets. Each file holds an object with a single list under the keys
// "students", "groups" and "supervisors" respectively. An empty groupsFile stands for no groups
func InputFromJson(studentsFile, groupsFile, supervisorsFile string) (ModelInput, error) {
	inputJson := make(map[string]any)
	for _, source := range [][2]string{{"students", studentsFile}, {"groups", groupsFile}, {"supervisors", supervisorsFile}} {
		key, file := source[0], source[1]
		if file == "" && key == "groups" {
			continue
		}

		collection, err := readCollection(file, key)
		if err != nil {
			return ModelInput{}, err
		}
		inputJson[key] = collection
	}

	var rawInput RawModelInput
	if err := mapstructure.Decode(inputJson, &rawInput); err != nil {
		return ModelInput{}, errors.Wrap(ErrInvalidInput, err.Error())
	}
	return ProcessRawInput(rawInput)
}

func readCollection(file, key string) (any, error) {
	content, err := os.ReadFile(file)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read %v file", key)
	}

	// Numbers are kept as json.Number so that fractional ids or ranks are rejected instead of truncated
	decoder := json.NewDecoder(bytes.NewReader(content))
	decoder.UseNumber()
	var collectionJson map[string]any
	if err := decoder.Decode(&collectionJson); err != nil {
		return nil, errors.Wrapf(ErrInvalidInput, "cannot parse %v file %v: %v", key, file, err)
	}

	collection, ok := collectionJson[key]
	if !ok {
		return nil, errors.Wrapf(ErrInvalidInput, "%v file %v has no %q list", key, file, key)
	}
	return collection, nil
}

func ProcessRawInput(rawInput RawModelInput) (ModelInput, error) {
	if err := validator.New().Struct(rawInput); err != nil {
		return ModelInput{}, errors.Wrap(ErrInvalidInput, err.Error())
	}

	//** Verify ids are unique within each collection
	if duplicates := lo.FindDuplicates(lo.Map(rawInput.Students, func(student RawStudent, _ int) uint64 { return student.Id })); len(duplicates) > 0 {
		return ModelInput{}, errors.Wrapf(ErrInvalidInput, "duplicate student ids: %v", duplicates)
	}
	if duplicates := lo.FindDuplicates(lo.Map(rawInput.Groups, func(group RawGroup, _ int) uint64 { return group.Id })); len(duplicates) > 0 {
		return ModelInput{}, errors.Wrapf(ErrInvalidInput, "duplicate group ids: %v", duplicates)
	}
	if duplicates := lo.FindDuplicates(lo.Map(rawInput.Supervisors, func(supervisor RawSupervisor, _ int) uint64 { return supervisor.Id })); len(duplicates) > 0 {
		return ModelInput{}, errors.Wrapf(ErrInvalidInput, "duplicate supervisor ids: %v", duplicates)
	}

	//** Derive topics from supervisors
	topics := lo.FlatMap(rawInput.Supervisors, func(supervisor RawSupervisor, _ int) []int64 { return supervisor.TopicIds })
	if duplicates := lo.FindDuplicates(topics); len(duplicates) > 0 {
		return ModelInput{}, errors.Wrapf(ErrInvalidInput, "topics %v are owned by more than one supervisor", duplicates)
	}
	slices.Sort(topics)
	for i, topic := range topics {
		if topic != topics[0]+int64(i) {
			return ModelInput{}, errors.Wrapf(ErrInvalidInput, "topic ids must form a contiguous range: %v", topics)
		}
	}

	input := ModelInput{
		Students:    make([]Student, 0, len(rawInput.Students)),
		Groups:      make([]Group, 0, len(rawInput.Groups)),
		Supervisors: make([]Supervisor, 0, len(rawInput.Supervisors)),
		Topics:      topics,
	}

	for _, rawStudent := range rawInput.Students {
		preferences, ranks, err := decodePreferences(rawStudent.Preferences, topics)
		if err != nil {
			return ModelInput{}, errors.Wrapf(err, "student %d", rawStudent.Id)
		}
		input.Students = append(input.Students, Student{
			Id:          rawStudent.Id,
			Preferences: preferences,
			Ranks:       ranks,
		})
	}

	for _, rawGroup := range rawInput.Groups {
		preferences, ranks, err := decodePreferences(rawGroup.Preferences, topics)
		if err != nil {
			return ModelInput{}, errors.Wrapf(err, "group %d", rawGroup.Id)
		}
		input.Groups = append(input.Groups, Group{
			Id:          rawGroup.Id,
			Preferences: preferences,
			Ranks:       ranks,
			Size:        rawGroup.Size,
		})
	}

	for _, rawSupervisor := range rawInput.Supervisors {
		topicIds := slices.Clone(rawSupervisor.TopicIds)
		slices.Sort(topicIds)
		input.Supervisors = append(input.Supervisors, Supervisor{
			Id:        rawSupervisor.Id,
			TopicIds:  topicIds,
			MinTopics: rawSupervisor.MinTopics,
			MaxTopics: rawSupervisor.MaxTopics,
		})
	}

	if err := checkCostBound(input); err != nil {
		return ModelInput{}, err
	}

	return input, nil
}

// checkCostBound rejects inputs whose worst assignment cost, Σ max rank² (times size for groups), does not fit in an int64
func checkCostBound(input ModelInput) error {
	var total uint64
	add := func(rank, size uint64) bool {
		square, overflow := bits.Mul64(rank, rank)
		if overflow != 0 {
			return false
		}
		cost, overflow := bits.Mul64(square, size)
		if overflow != 0 {
			return false
		}
		total, overflow = bits.Add64(total, cost, 0)
		return overflow == 0 && total <= math.MaxInt64
	}

	for _, student := range input.Students {
		if !add(lo.Max(student.Preferences), 1) {
			return errors.Wrapf(ErrInvalidInput, "ranks of student %d make the assignment cost overflow", student.Id)
		}
	}
	for _, group := range input.Groups {
		if !add(lo.Max(group.Preferences), group.Size) {
			return errors.Wrapf(ErrInvalidInput, "ranks and size of group %d make the assignment cost overflow", group.Id)
		}
	}
	return nil
}

// decodePreferences accepts either a list where the i-th rank belongs to topics[i], or an object keyed by topic id.
// Every topic must be ranked and every rank must be positive
func decodePreferences(rawPreferences any, topics []int64) ([]uint64, map[int64]uint64, error) {
	ranks := make(map[int64]int64, len(topics))

	switch reflect.ValueOf(rawPreferences).Kind() {
	case reflect.Slice, reflect.Array:
		var list []int64
		if err := mapstructure.Decode(rawPreferences, &list); err != nil {
			return nil, nil, errors.Wrap(ErrInvalidInput, err.Error())
		}
		if len(list) != len(topics) {
			return nil, nil, errors.Wrapf(ErrInvalidInput, "%d preferences given for %d topics", len(list), len(topics))
		}
		for i, rank := range list {
			ranks[topics[i]] = rank
		}

	case reflect.Map:
		var byTopic map[string]int64
		if err := mapstructure.Decode(rawPreferences, &byTopic); err != nil {
			return nil, nil, errors.Wrap(ErrInvalidInput, err.Error())
		}
		for key, rank := range byTopic {
			topic, err := strconv.ParseInt(key, 10, 64)
			if err != nil || !slices.Contains(topics, topic) {
				return nil, nil, errors.Wrapf(ErrInvalidInput, "preference for unknown topic %q", key)
			} else if _, ok := ranks[topic]; ok {
				return nil, nil, errors.Wrapf(ErrInvalidInput, "topic %d is ranked twice", topic)
			}
			ranks[topic] = rank
		}

	default:
		return nil, nil, errors.Wrapf(ErrInvalidInput, "preferences must be a list or an object: %v", rawPreferences)
	}

	preferences := make([]uint64, 0, len(topics))
	for _, topic := range topics {
		rank, ok := ranks[topic]
		if !ok {
			return nil, nil, errors.Wrapf(ErrInvalidInput, "topic %d is not ranked", topic)
		} else if rank < 1 {
			return nil, nil, errors.Wrapf(ErrInvalidInput, "rank of topic %d must be positive: %d", topic, rank)
		}
		preferences = append(preferences, uint64(rank))
	}

	return preferences, lo.SliceToMap(topics, func(topic int64) (int64, uint64) { return topic, uint64(ranks[topic]) }), nil
}
