package actions

import (
	"sync"

	"github.com/relloyd/ctadmin/helper"
)

// ConnectionObject holds a string of the form <connection>[.<database>] and splits it on first use.
type ConnectionObject struct {
	ConnectionObject string `errorTxt:"<connection>[.<database>]" mandatory:"yes"`
	connection       string
	object           string
	once             sync.Once
}

func (c *ConnectionObject) GetConnectionName() string {
	c.split()
	return c.connection
}

// GetObject returns the part after the first period, or "" if there isn't one.
func (c *ConnectionObject) GetObject() string {
	c.split()
	return c.object
}

func (c *ConnectionObject) split() {
	c.once.Do(func() {
		c.connection, c.object = helper.Split(c.ConnectionObject, ".")
	})
}
