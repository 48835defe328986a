package ffxiv

import (
	"embed"
	"encoding/csv"
	"io"
	"io/fs"
	"strconv"

	"github.com/dimchansky/utfbom"
	"github.com/pkg/errors"
)

//go:embed data/*.csv
var dataFS embed.FS

// Data exposes the embedded rule tables.
func Data() fs.FS {
	return dataFS
}

// ActionData times are milliseconds.
type ActionData struct {
	ID       int
	Name     string
	Job      string
	OnGCD    bool
	CastTime int64
	Cooldown int64
}

// StatusData.SpeedModifier is 0 for statuses that do not scale the GCD.
type StatusData struct {
	ID            int
	Name          string
	SpeedModifier float64
}

type SkillSets struct {
	Actions  map[int]ActionData
	Statuses map[int]StatusData

	Job map[string][]int
}

func (ss *SkillSets) Action(id int) (ActionData, bool) {
	v, ok := ss.Actions[id]
	return v, ok
}

func (ss *SkillSets) Status(id int) (StatusData, bool) {
	v, ok := ss.Statuses[id]
	return v, ok
}

// Default is loaded from the embedded tables.
var Default *SkillSets

func init() {
	var err error
	Default, err = LoadEmbedded()
	if err != nil {
		panic(err)
	}
}

func LoadEmbedded() (*SkillSets, error) {
	fa, err := dataFS.Open("data/actions.csv")
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer fa.Close()

	fst, err := dataFS.Open("data/statuses.csv")
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer fst.Close()

	return Load(fa, fst)
}

// Load reads the action and status tables. Both start with a header row.
func Load(actions io.Reader, statuses io.Reader) (*SkillSets, error) {
	ss := &SkillSets{
		Actions:  make(map[int]ActionData),
		Statuses: make(map[int]StatusData),
		Job:      make(map[string][]int),
	}

	err := readCSV(actions, 6, func(d []string) error {
		id, err := strconv.Atoi(d[0])
		if err != nil {
			return errors.Wrapf(err, "action id %q", d[0])
		}

		castTime, _ := strconv.ParseInt(d[4], 10, 64)
		cooldown, _ := strconv.ParseInt(d[5], 10, 64)

		ss.Actions[id] = ActionData{
			ID:       id,
			Name:     d[1],
			Job:      d[2],
			OnGCD:    d[3] == "1",
			CastTime: castTime,
			Cooldown: cooldown,
		}
		if d[2] != "" {
			ss.Job[d[2]] = append(ss.Job[d[2]], id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = readCSV(statuses, 3, func(d []string) error {
		id, err := strconv.Atoi(d[0])
		if err != nil {
			return errors.Wrapf(err, "status id %q", d[0])
		}

		var mod float64
		if d[2] != "" {
			mod, err = strconv.ParseFloat(d[2], 64)
			if err != nil {
				return errors.Wrapf(err, "status %d speed modifier", id)
			}
		}

		ss.Statuses[id] = StatusData{
			ID:            id,
			Name:          d[1],
			SpeedModifier: mod,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return ss, nil
}

func readCSV(r io.Reader, columns int, row func(d []string) error) error {
	sr, _ := utfbom.Skip(r)

	cr := csv.NewReader(sr)
	cr.FieldsPerRecord = columns

	header := true
	for {
		d, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.WithStack(err)
		}

		if header {
			header = false
			continue
		}

		err = row(d)
		if err != nil {
			return err
		}
	}

	return nil
}
