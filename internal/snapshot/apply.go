package snapshot

import "fmt"

// ApplyCompletion returns a copy of snap with the identified inspection
// marked completed. The rewrite is pure: snap is never mutated, sibling
// inspections and unrelated work orders are carried over untouched, and on
// any error the input is returned unchanged.
func ApplyCompletion(snap Snapshot, workOrderID, inspectionID string, result InspectionResult, completedAt string) (Snapshot, error) {
	woIdx := -1
	for i := range snap.WorkOrders {
		if snap.WorkOrders[i].WorkOrderID == workOrderID {
			woIdx = i
			break
		}
	}
	if woIdx < 0 {
		return snap, fmt.Errorf("work order %s not in snapshot", workOrderID)
	}

	insIdx := -1
	for i := range snap.WorkOrders[woIdx].Inspections {
		if snap.WorkOrders[woIdx].Inspections[i].InspectionID == inspectionID {
			insIdx = i
			break
		}
	}
	if insIdx < 0 {
		return snap, fmt.Errorf("inspection %s not in work order %s", inspectionID, workOrderID)
	}

	out := snap
	out.WorkOrders = make([]WorkOrder, len(snap.WorkOrders))
	copy(out.WorkOrders, snap.WorkOrders)

	wo := out.WorkOrders[woIdx]
	wo.Inspections = make([]Inspection, len(snap.WorkOrders[woIdx].Inspections))
	copy(wo.Inspections, snap.WorkOrders[woIdx].Inspections)

	ins := wo.Inspections[insIdx]
	ins.Status = InspectionStatusCompleted
	ins.CompletedAt = completedAt
	r := result
	ins.Result = &r

	wo.Inspections[insIdx] = ins
	out.WorkOrders[woIdx] = wo
	return out, nil
}
