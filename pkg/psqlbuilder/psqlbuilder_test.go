package psqlbuilder

import (
	"testing"

	"github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelect_UsesDollarPlaceholders(t *testing.T) {
	query, args, err := Select("id").
		From("appointments").
		Where(squirrel.Eq{"master_id": int64(7)}).
		Where(squirrel.Lt{"start_time": "x"}).
		ToSql()

	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM appointments WHERE master_id = $1 AND start_time < $2", query)
	assert.Equal(t, []interface{}{int64(7), "x"}, args)
}
