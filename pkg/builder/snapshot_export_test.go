package builder

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/resolvectx/resloc/pkg/ids"
	"github.com/resolvectx/resloc/pkg/resources"
)

func TestExportCandidatesReflectsRegisteredCandidates(t *testing.T) {
	b := newTestBuilder(t)

	ci, err := b.AddCondition(mustCondition(t, "language", "fr"))
	if err != nil {
		t.Fatalf("AddCondition: %v", err)
	}
	csi, err := b.AddConditionSet([]ids.ConditionIndex{ci})
	if err != nil {
		t.Fatalf("AddConditionSet: %v", err)
	}

	resId := ids.ResourceId("app.welcome")
	if err := b.AddLooseCandidate(resId, ids.ResourceName("welcome"), 0, csi, ids.DefaultConditionPriority, resources.Candidate{
		InstanceValue: json.RawMessage(`{"text":"bonjour"}`),
		MergeMethod:   resources.MergeReplace,
		Completeness:  resources.Full,
	}); err != nil {
		t.Fatalf("AddLooseCandidate: %v", err)
	}

	snap, err := b.Seal()
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}

	cs, err := snap.Tree.GetResourceById(resId)
	if err != nil {
		t.Fatalf("GetResourceById: %v", err)
	}
	decision := snap.Decisions[cs.DecisionIndex]
	wantKey := decision.ConditionSets()[0].Key()

	got := snap.ExportCandidates()
	want := []ExportedCandidate{
		{
			ResourceId:      resId,
			ConditionSetKey: wantKey,
			MergeMethod:     resources.MergeReplace,
			Completeness:    resources.Full,
			InstanceValue:   json.RawMessage(`{"text":"bonjour"}`),
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("ExportCandidates mismatch (-want +got):\n%s", diff)
	}
}
