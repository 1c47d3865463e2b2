package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"recipehub/internal/catalog"
	"recipehub/internal/testutil"
)

func TestLoadAllAndCSV(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.SeedRecipes(t, db)

	recipes, err := loadAll(context.Background(), catalog.NewRepo(db))
	require.NoError(t, err)
	require.Len(t, recipes, 3)

	var buf bytes.Buffer
	require.NoError(t, writeCSV(&buf, recipes))
	require.Equal(t,
		"recipe_id,title,cook_time,servings,tags,amount,unit,ingredient\n"+
			"A,Pancakes,20,4,breakfast;vegetarian;quick,2,cup,Flour\n"+
			"B,Salted Bread,90,8,vegan,1,cup,Flour\n"+
			"B,Salted Bread,90,8,vegan,3,g,Salt\n"+
			"C,Steak,25,2,dinner;high-protein;low-carb,400,g,Beef\n",
		buf.String())
}
