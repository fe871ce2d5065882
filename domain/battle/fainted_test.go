package battle

import (
	"reflect"
	"testing"
)

func TestDeriveFainted(t *testing.T) {
	turns := []TurnLog{
		{BattleID: "b1", Turn: 1, Frame: 100, You: "Garchomp", Opponent: "Rotom-Wash"},
		{BattleID: "b1", Turn: 2, Frame: 300, You: "Garchomp", Opponent: "Dragonite"},
		{BattleID: "b2", Turn: 1, Frame: 5000, You: "Amoonguss", Opponent: "Gholdengo"},
	}
	messages := []MessageLog{
		{BattleID: "b1", Frame: 50, Text: "The opposing Rotom fainted!"},
		{BattleID: "b1", Frame: 250, Text: "The opposing Rotom fainted!"},
		{BattleID: "b1", Frame: 260, Text: "The opposing Rotom fainted!"},
		{BattleID: "b1", Frame: 400, Text: "Garchomp fainted!"},
		{BattleID: "b1", Frame: 410, Text: "Garchomp used Earthquake!"},
		{BattleID: "b2", Frame: 5100, Text: "相手のサーフゴーは倒れた！"},
	}

	got := DeriveFainted(turns, messages)
	want := []FaintedEvent{
		{BattleID: "b1", Turn: 1, You: "Garchomp", Opponent: "Rotom-Wash", Side: Opponent},
		{BattleID: "b1", Turn: 2, You: "Garchomp", Opponent: "Dragonite", Side: You},
		{BattleID: "b2", Turn: 1, You: "Amoonguss", Opponent: "Gholdengo", Side: Opponent},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("DeriveFainted() =\n%+v\nwant\n%+v", got, want)
	}
}
