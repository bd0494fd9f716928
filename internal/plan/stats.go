package plan

// Stats counts the operations of a plan by kind.
type Stats struct {
	CreateNode int `json:"create_node"`
	PairZone   int `json:"pair_zone"`
	Connect    int `json:"connect"`
	ApplyValue int `json:"apply_value"`
	// Interface counts Adjust, RenameSocket, DeclarePort and Expose operations.
	Interface int `json:"interface"`
	// UserValues counts ApplyValue operations whose value came from the override layer.
	UserValues int `json:"user_values"`
}

// Total returns the number of operations.
func (s Stats) Total() int {
	return s.CreateNode + s.PairZone + s.Connect + s.ApplyValue + s.Interface
}

// Stats counts the operations of p.
func (p *Plan) Stats() Stats {
	var s Stats
	for _, op := range p.Ops {
		switch op.Kind {
		case OpCreateNode:
			s.CreateNode++
		case OpPairZone:
			s.PairZone++
		case OpConnect:
			s.Connect++
		case OpApplyValue:
			s.ApplyValue++
			if op.Apply != nil && op.Apply.Layer == LayerUser {
				s.UserValues++
			}
		case OpAdjust, OpRenameSocket, OpDeclarePort, OpExpose:
			s.Interface++
		}
	}
	return s
}
