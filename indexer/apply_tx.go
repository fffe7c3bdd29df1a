package indexer

import (
	"math/big"

	"arkade.dev/assets/asset"
	"arkade.dev/assets/indexer/metrics"
)

// groupCtx carries one group's resolved view through validation.
type groupCtx struct {
	group     *asset.Group
	effective asset.AssetID
	genesis   bool
	delta     *big.Int
	control   *asset.AssetID // resolved issuance control, genesis only
}

// ApplyTx validates tx against st and applies its mutations. The whole
// application is atomic: on any rejection st is left unchanged. Metrics are
// not recorded here; speculative rebuilds replay the mempool through this
// path and must not inflate the counters.
func (ix *Indexer) ApplyTx(st *State, tx *asset.Tx, confirmed bool) error {
	return ix.applyTxAtomic(st, tx, confirmed, false)
}

func (ix *Indexer) applyTxAtomic(st *State, tx *asset.Tx, confirmed bool, counted bool) error {
	work := st.Clone()
	if err := ix.applyTx(work, tx, confirmed, counted); err != nil {
		if counted {
			metrics.TxRejectedTotal.WithLabelValues(string(asset.CodeOf(err))).Inc()
		}
		return err
	}
	*st = *work
	if counted {
		status := StatusMempool
		if confirmed {
			status = StatusConfirmed
		}
		metrics.TxAppliedTotal.WithLabelValues(string(status)).Inc()
	}
	return nil
}

func (ix *Indexer) applyTx(st *State, tx *asset.Tx, confirmed bool, counted bool) error {
	// Record the transaction body.
	if _, known := st.Transactions[tx.Txid]; !known {
		status := StatusMempool
		if confirmed {
			status = StatusConfirmed
		}
		st.Transactions[tx.Txid] = TxRecord{Tx: *tx, Status: status, ProcessedAt: ix.now()}
	}

	packet, found, err := asset.FindMarker(tx)
	if err != nil {
		return err
	}
	if !found {
		// Implicit burn: spending asset-bearing outpoints without a marker
		// destroys those balances. This is a success, not an error.
		burned := 0
		for _, prev := range tx.Vin {
			if _, carries := st.Utxos[prev]; carries {
				delete(st.Utxos, prev)
				burned++
			}
		}
		if burned > 0 {
			if counted {
				metrics.ImplicitBurnsTotal.Inc()
			}
			ix.logger.Debug("implicit burn", "txid", asset.Hex32(tx.Txid), "outpoints", burned)
		}
		return nil
	}

	groups, err := resolveGroups(tx, packet)
	if err != nil {
		return err
	}
	if err := validateStructure(tx, groups); err != nil {
		return err
	}

	consumption, err := computeDeltas(st, tx, groups)
	if err != nil {
		return err
	}
	if err := checkFullConsumption(st, tx, consumption); err != nil {
		return err
	}
	if err := authorize(st, tx, groups); err != nil {
		return err
	}

	applyMutations(st, tx, groups, consumption)
	return nil
}

// resolveGroups computes each group's effective AssetId.
func resolveGroups(tx *asset.Tx, packet *asset.Packet) ([]groupCtx, error) {
	groups := make([]groupCtx, len(packet.Groups))
	for k := range packet.Groups {
		g := &packet.Groups[k]
		gc := groupCtx{group: g}
		if g.AssetID != nil {
			gc.effective = *g.AssetID
		} else {
			gc.effective = asset.AssetID{Txid: tx.Txid, Gidx: uint16(k)}
			gc.genesis = true
		}
		groups[k] = gc
	}
	return groups, nil
}

func validateStructure(tx *asset.Tx, groups []groupCtx) error {
	seen := make(map[asset.AssetID]bool, len(groups))
	for k := range groups {
		gc := &groups[k]
		g := gc.group

		if seen[gc.effective] {
			return aerrf(asset.TX_ERR_DUPLICATE_ASSET_IN_TX, "asset %s", gc.effective)
		}
		seen[gc.effective] = true

		if g.Issuance != nil && !gc.genesis {
			return aerrf(asset.TX_ERR_ISSUANCE_ON_EXISTING, "group %d", k)
		}

		for _, in := range g.Inputs {
			if in.Amt == 0 {
				return aerrf(asset.TX_ERR_ZERO_AMOUNT, "group %d input", k)
			}
			if int(in.Vin) >= len(tx.Vin) {
				return aerrf(asset.TX_ERR_INPUT_INDEX_OUT_OF_BOUNDS, "group %d vin %d", k, in.Vin)
			}
		}
		credited := make(map[uint16]bool, len(g.Outputs))
		for _, out := range g.Outputs {
			if out.Amt == 0 {
				return aerrf(asset.TX_ERR_ZERO_AMOUNT, "group %d output", k)
			}
			if int(out.Vout) >= len(tx.Vout) {
				return aerrf(asset.TX_ERR_OUTPUT_INDEX_OUT_OF_BOUNDS, "group %d vout %d", k, out.Vout)
			}
			if credited[out.Vout] {
				return aerrf(asset.TX_ERR_DUPLICATE_OUTPUT_IN_GROUP, "group %d vout %d", k, out.Vout)
			}
			credited[out.Vout] = true
		}

		if g.Issuance != nil && g.Issuance.ControlAsset != nil {
			ref := g.Issuance.ControlAsset
			switch ref.Kind {
			case asset.RefByGroup:
				if int(ref.Gidx) == k {
					return aerrf(asset.TX_ERR_SELF_REFERENTIAL_CONTROL, "group %d", k)
				}
				if int(ref.Gidx) >= len(groups) {
					return aerrf(asset.TX_ERR_MISSING_GROUP_REF, "group %d -> %d", k, ref.Gidx)
				}
				gc.control = &groups[ref.Gidx].effective
			case asset.RefByID:
				id := ref.ID
				if id == gc.effective {
					return aerrf(asset.TX_ERR_SELF_REFERENTIAL_CONTROL, "group %d", k)
				}
				gc.control = &id
			}
		}
	}
	return nil
}

// computeDeltas sums each group's inputs and outputs and tracks per-outpoint
// consumption. Deltas are signed big integers so sum_out - sum_in is always
// representable.
func computeDeltas(st *State, tx *asset.Tx, groups []groupCtx) (map[asset.Outpoint]map[asset.AssetID]uint64, error) {
	consumption := make(map[asset.Outpoint]map[asset.AssetID]uint64)

	for k := range groups {
		gc := &groups[k]
		sumIn := new(big.Int)
		sumOut := new(big.Int)

		for _, in := range gc.group.Inputs {
			prev := tx.Vin[in.Vin]
			stored := st.Utxos[prev][gc.effective]
			used := consumption[prev][gc.effective]
			if in.Amt > stored-used {
				return nil, aerrf(asset.TX_ERR_INPUT_EXCEEDS_STORED,
					"%s asset %s: want %d, have %d", prev, gc.effective, used+in.Amt, stored)
			}
			if consumption[prev] == nil {
				consumption[prev] = make(map[asset.AssetID]uint64)
			}
			consumption[prev][gc.effective] = used + in.Amt
			sumIn.Add(sumIn, new(big.Int).SetUint64(in.Amt))
		}
		for _, out := range gc.group.Outputs {
			sumOut.Add(sumOut, new(big.Int).SetUint64(out.Amt))
		}
		gc.delta = new(big.Int).Sub(sumOut, sumIn)
	}
	return consumption, nil
}

// checkFullConsumption enforces that every asset carried by a spent outpoint
// is consumed exactly; a partial spend is rejected.
func checkFullConsumption(st *State, tx *asset.Tx, consumption map[asset.Outpoint]map[asset.AssetID]uint64) error {
	for _, prev := range tx.Vin {
		bal, carries := st.Utxos[prev]
		if !carries {
			continue
		}
		for id, stored := range bal {
			if used := consumption[prev][id]; used != stored {
				return aerrf(asset.TX_ERR_PARTIAL_INPUT_CONSUMPTION,
					"%s asset %s: used %d of %d", prev, id, used, stored)
			}
		}
	}
	return nil
}

func authorize(st *State, tx *asset.Tx, groups []groupCtx) error {
	for k := range groups {
		gc := &groups[k]
		rec, exists := st.Assets[gc.effective]
		fresh := !exists && gc.effective.Txid == tx.Txid

		if fresh {
			if gc.group.HasUpdate {
				return aerrf(asset.TX_ERR_METADATA_UPDATE_UNAUTHORIZED, "group %d: no stored record", k)
			}
			if gc.control != nil {
				if err := checkControlResolvable(st, groups, *gc.control, k); err != nil {
					return err
				}
			}
			continue
		}
		if !exists {
			// Foreign asset with no record: any credit is an unauthorized
			// mint (inputs were already rejected against the empty balance).
			if gc.delta.Sign() > 0 {
				return aerrf(asset.TX_ERR_MINT_WITHOUT_CONTROL, "group %d: unknown asset %s", k, gc.effective)
			}
			if gc.group.HasUpdate {
				return aerrf(asset.TX_ERR_METADATA_UPDATE_UNAUTHORIZED, "group %d: unknown asset", k)
			}
			continue
		}

		if gc.delta.Sign() > 0 {
			if err := checkControlRetained(groups, rec, k); err != nil {
				return err
			}
		}
		if gc.group.HasUpdate {
			if rec.Immutable {
				return aerrf(asset.TX_ERR_METADATA_UPDATE_ON_IMMUTABLE, "asset %s", gc.effective)
			}
			if err := checkControlSpent(st, tx, rec, k); err != nil {
				return err
			}
		}
	}
	return nil
}

// checkControlResolvable requires a fresh asset's control reference to name
// an existing record or another genesis group of this transaction.
func checkControlResolvable(st *State, groups []groupCtx, control asset.AssetID, k int) error {
	if _, ok := st.Assets[control]; ok {
		return nil
	}
	for j := range groups {
		if j != k && groups[j].genesis && groups[j].effective == control {
			return nil
		}
	}
	return aerrf(asset.TX_ERR_CONTROL_ASSET_MISSING, "group %d control %s", k, control)
}

// checkControlRetained enforces the mint/reissue rule: the stored control
// asset must move through this transaction with delta zero. Control is
// single-level only; a controller's own controller grants nothing here.
func checkControlRetained(groups []groupCtx, rec AssetRecord, k int) error {
	if rec.ControlAsset == nil {
		return aerrf(asset.TX_ERR_MINT_WITHOUT_CONTROL, "group %d", k)
	}
	for j := range groups {
		if j == k || groups[j].effective != *rec.ControlAsset {
			continue
		}
		if groups[j].delta.Sign() != 0 {
			return aerrf(asset.TX_ERR_CONTROL_NOT_RETAINED,
				"group %d: control %s delta %s", k, *rec.ControlAsset, groups[j].delta)
		}
		return nil
	}
	return aerrf(asset.TX_ERR_CONTROL_NOT_RETAINED, "group %d: control %s absent", k, *rec.ControlAsset)
}

// checkControlSpent enforces the metadata-update rule: some input of this
// transaction must spend an outpoint currently carrying the control asset.
func checkControlSpent(st *State, tx *asset.Tx, rec AssetRecord, k int) error {
	if rec.ControlAsset == nil {
		return aerrf(asset.TX_ERR_METADATA_UPDATE_UNAUTHORIZED, "group %d: no control asset", k)
	}
	for _, prev := range tx.Vin {
		if bal, ok := st.Utxos[prev]; ok {
			if _, holds := bal[*rec.ControlAsset]; holds {
				return nil
			}
		}
	}
	return aerrf(asset.TX_ERR_METADATA_UPDATE_UNAUTHORIZED, "group %d: control %s not spent", k, *rec.ControlAsset)
}

func applyMutations(st *State, tx *asset.Tx, groups []groupCtx, consumption map[asset.Outpoint]map[asset.AssetID]uint64) {
	// Spend: full consumption was enforced, so consumed assets disappear
	// from their outpoints; empty balance maps are removed entirely.
	for prev, assets := range consumption {
		bal := st.Utxos[prev]
		for id := range assets {
			delete(bal, id)
		}
		if len(bal) == 0 {
			delete(st.Utxos, prev)
		}
	}

	for k := range groups {
		gc := &groups[k]

		for _, out := range gc.group.Outputs {
			op := asset.Outpoint{Txid: tx.Txid, Vout: uint32(out.Vout)}
			bal := st.Utxos[op]
			if bal == nil {
				bal = make(UtxoBalance)
				st.Utxos[op] = bal
			}
			bal[gc.effective] += out.Amt
		}

		_, exists := st.Assets[gc.effective]
		if !exists && gc.effective.Txid == tx.Txid {
			rec := AssetRecord{ControlAsset: gc.control}
			if iss := gc.group.Issuance; iss != nil {
				rec.Metadata = iss.Metadata.Clone()
				rec.Immutable = iss.Immutable
			}
			st.Assets[gc.effective] = rec
		} else if gc.group.HasUpdate {
			rec := st.Assets[gc.effective]
			rec.Metadata = gc.group.MetaData.Clone()
			st.Assets[gc.effective] = rec
		}
	}
}

func aerrf(code asset.ErrorCode, format string, args ...any) error {
	return asset.Errorf(code, format, args...)
}
