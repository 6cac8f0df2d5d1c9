package core

import (
	"database/sql/driver"
	"encoding/json"

	"github.com/pkg/errors"
)

// StringList is a []string stored as a JSON column.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	b, err := json.Marshal(l)
	return b, errors.Wrap(err, "marshaling StringList")
}

func (l *StringList) Scan(src interface{}) error {
	if src == nil {
		*l = StringList{}
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return errors.Errorf("scanning StringList: unexpected type %T", src)
	}
	return errors.Wrap(json.Unmarshal(b, l), "unmarshaling StringList")
}

// IntList is a []int stored as a JSON column.
type IntList []int

func (l IntList) Value() (driver.Value, error) {
	if l == nil {
		l = IntList{}
	}
	b, err := json.Marshal(l)
	return b, errors.Wrap(err, "marshaling IntList")
}

func (l *IntList) Scan(src interface{}) error {
	if src == nil {
		*l = IntList{}
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return errors.Errorf("scanning IntList: unexpected type %T", src)
	}
	return errors.Wrap(json.Unmarshal(b, l), "unmarshaling IntList")
}

func (l IntList) Contains(id int) bool {
	for _, v := range l {
		if v == id {
			return true
		}
	}
	return false
}
