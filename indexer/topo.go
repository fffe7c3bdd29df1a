package indexer

import "arkade.dev/assets/asset"

// topoSort orders block transactions so that every transaction follows the
// in-block transactions whose outputs it spends (Kahn's algorithm). The
// result is stable: among ready transactions the original block order wins.
// A dependency cycle is fatal for the block.
func topoSort(txs []asset.Tx) ([]int, error) {
	byTxid := make(map[[32]byte]int, len(txs))
	for i := range txs {
		byTxid[txs[i].Txid] = i
	}

	// edges[a] lists txs spending a's outputs; indegree counts in-block deps.
	edges := make([][]int, len(txs))
	indegree := make([]int, len(txs))
	for i := range txs {
		seen := make(map[int]bool)
		for _, prev := range txs[i].Vin {
			a, inBlock := byTxid[prev.Txid]
			if !inBlock || a == i || seen[a] {
				continue
			}
			seen[a] = true
			edges[a] = append(edges[a], i)
			indegree[i]++
		}
	}

	order := make([]int, 0, len(txs))
	done := make([]bool, len(txs))
	for len(order) < len(txs) {
		picked := -1
		for i := range txs {
			if !done[i] && indegree[i] == 0 {
				picked = i
				break
			}
		}
		if picked < 0 {
			return nil, aerrf(asset.BLOCK_ERR_DEPENDENCY_CYCLE, "%d of %d ordered", len(order), len(txs))
		}
		done[picked] = true
		order = append(order, picked)
		for _, b := range edges[picked] {
			indegree[b]--
		}
	}
	return order, nil
}
