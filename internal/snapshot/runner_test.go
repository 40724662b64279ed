package snapshot

import (
	"context"
	"errors"
	"math/big"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ignitionAdapters/internal/decimal"
	"ignitionAdapters/internal/dex"
	"ignitionAdapters/internal/model"
)

var (
	poolA  = common.HexToAddress("0x1111111111111111111111111111111111111111")
	token0 = common.HexToAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	token1 = common.HexToAddress("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
)

type fakeChain struct {
	latest  uint64
	logs    []types.Log
	queries []BlockRange
	fail    int
}

func (f *fakeChain) ChainID(context.Context) (uint64, error) { return 56, nil }

func (f *fakeChain) LatestBlockNumber(context.Context) (uint64, error) { return f.latest, nil }

func (f *fakeChain) BlockTimestamp(_ context.Context, number uint64) (uint64, error) {
	return 1700000000 + number, nil
}

func (f *fakeChain) FilterLogs(_ context.Context, from, to uint64, _ []common.Address, _ []common.Hash) ([]types.Log, error) {
	if f.fail > 0 {
		f.fail--
		return nil, errors.New("rpc unavailable")
	}
	f.queries = append(f.queries, BlockRange{From: from, To: to})
	var out []types.Log
	for _, log := range f.logs {
		if log.BlockNumber >= from && log.BlockNumber <= to {
			out = append(out, log)
		}
	}
	return out, nil
}

type fakePools struct{}

func (fakePools) PoolMeta(_ context.Context, pool common.Address) (model.PoolMeta, error) {
	if pool != poolA {
		return model.PoolMeta{}, errors.New("unknown pool")
	}
	return model.PoolMeta{Token0: token0.Hex(), Token1: token1.Hex(), Fee: 3000, TickSpacing: 60}, nil
}

func (fakePools) TokenDecimals(_ context.Context, token common.Address) (uint8, error) {
	switch token {
	case token0:
		return 18, nil
	case token1:
		return 6, nil
	}
	return 0, errors.New("unknown token")
}

type memorySink struct {
	snapshots []model.BinSnapshot
}

func (m *memorySink) PutSnapshotBatch(_ context.Context, snapshots []model.BinSnapshot) error {
	m.snapshots = append(m.snapshots, snapshots...)
	return nil
}

type memoryRecorder struct {
	pools []model.Pool
}

func (m *memoryRecorder) UpsertPools(_ context.Context, pools []model.Pool) error {
	m.pools = append(m.pools, pools...)
	return nil
}

func swapLog(t *testing.T, block uint64, index uint, sqrtPrice *big.Int, tick int64) types.Log {
	t.Helper()
	poolABI, err := dex.V3PoolABI()
	require.NoError(t, err)
	event := poolABI.Events["Swap"]
	data, err := event.Inputs.NonIndexed().Pack(big.NewInt(-1000), big.NewInt(2000), sqrtPrice, big.NewInt(1000000), big.NewInt(tick))
	require.NoError(t, err)

	sender := common.HexToAddress("0x2222222222222222222222222222222222222222")
	return types.Log{
		Address:     poolA,
		Topics:      []common.Hash{event.ID, common.BytesToHash(sender.Bytes()), common.BytesToHash(sender.Bytes())},
		Data:        data,
		BlockNumber: block,
		TxHash:      common.BigToHash(new(big.Int).SetUint64(block)),
		Index:       index,
	}
}

func TestRunnerWritesSnapshots(t *testing.T) {
	q96 := new(big.Int).Lsh(big.NewInt(1), 96)
	chainSource := &fakeChain{
		latest: 20,
		fail:   1,
		logs: []types.Log{
			swapLog(t, 11, 0, q96, 0),
			swapLog(t, 11, 0, q96, 0),
			swapLog(t, 14, 3, new(big.Int).Lsh(q96, 1), -5),
			{Address: poolA, Topics: []common.Hash{common.HexToHash("0x01")}, BlockNumber: 15},
		},
	}
	sink := &memorySink{}
	recorder := &memoryRecorder{}
	checkpoint := NewFileCheckpointStore(filepath.Join(t.TempDir(), "checkpoint.json"))

	cfg := RunConfig{FromBlock: 10, Pools: []common.Address{poolA}, Blueprint: "uniswap-v3", DesiredBins: 2, BatchSize: 5, MaxRetries: 2}
	runner, err := NewRunner(cfg, chainSource, fakePools{}, sink, checkpoint, zap.NewNop())
	require.NoError(t, err)
	runner.SetPoolRecorder(recorder)

	require.NoError(t, runner.Run(context.Background()))

	require.Equal(t, []BlockRange{{From: 10, To: 14}, {From: 15, To: 19}, {From: 20, To: 20}}, chainSource.queries)
	require.Len(t, sink.snapshots, 2)

	first := sink.snapshots[0]
	require.Equal(t, uint64(56), first.ChainID)
	require.Equal(t, poolA.Hex(), first.Pool)
	require.Equal(t, uint64(1700000011), first.Timestamp)
	require.Equal(t, "1", first.Spot)
	require.Equal(t, "1000000000000", first.AdjustedSpot)
	require.Equal(t, int32(0), first.ActiveBin)
	require.Equal(t, []int32{-60}, first.LowerBins)
	require.Equal(t, []int32{60}, first.HigherBins)

	second := sink.snapshots[1]
	require.Equal(t, "4", second.Spot)
	require.Equal(t, int32(-60), second.ActiveBin)
	require.Equal(t, []int32{-120}, second.LowerBins)
	require.Equal(t, []int32{0}, second.HigherBins)

	require.Len(t, recorder.pools, 1)
	require.Equal(t, uint64(11), recorder.pools[0].FirstSeenBlock)
	require.Equal(t, "uniswap-v3", recorder.pools[0].Blueprint)

	cp, ok, err := checkpoint.Load(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(20), cp.LastProcessedBlock)
	require.Equal(t, Fingerprint(cfg.Pools), cp.Fingerprint)
}

func TestRunnerResumesFromCheckpoint(t *testing.T) {
	checkpoint := NewFileCheckpointStore(filepath.Join(t.TempDir(), "checkpoint.json"))
	cfg := RunConfig{FromBlock: 10, ToBlock: 30, Pools: []common.Address{poolA}, DesiredBins: 2, BatchSize: 100}
	require.NoError(t, checkpoint.Save(context.Background(), Checkpoint{LastProcessedBlock: 25, Fingerprint: Fingerprint(cfg.Pools)}))

	chainSource := &fakeChain{}
	runner, err := NewRunner(cfg, chainSource, fakePools{}, &memorySink{}, checkpoint, nil)
	require.NoError(t, err)
	require.NoError(t, runner.Run(context.Background()))
	require.Equal(t, []BlockRange{{From: 26, To: 30}}, chainSource.queries)
}

func TestRunnerIgnoresForeignCheckpoint(t *testing.T) {
	checkpoint := NewFileCheckpointStore(filepath.Join(t.TempDir(), "checkpoint.json"))
	require.NoError(t, checkpoint.Save(context.Background(), Checkpoint{LastProcessedBlock: 25, Fingerprint: "0xother"}))

	cfg := RunConfig{FromBlock: 10, ToBlock: 30, Pools: []common.Address{poolA}, DesiredBins: 2, BatchSize: 100}
	chainSource := &fakeChain{}
	runner, err := NewRunner(cfg, chainSource, fakePools{}, &memorySink{}, checkpoint, nil)
	require.NoError(t, err)
	require.NoError(t, runner.Run(context.Background()))
	require.Equal(t, []BlockRange{{From: 10, To: 30}}, chainSource.queries)
}

func TestRunnerValidatesConfig(t *testing.T) {
	runner, err := NewRunner(RunConfig{BatchSize: 10}, &fakeChain{}, fakePools{}, &memorySink{}, nil, nil)
	require.NoError(t, err)
	require.Error(t, runner.Run(context.Background()))

	runner, err = NewRunner(RunConfig{Pools: []common.Address{poolA}}, &fakeChain{}, fakePools{}, &memorySink{}, nil, nil)
	require.NoError(t, err)
	require.Error(t, runner.Run(context.Background()))
}

func TestAdjustSpot(t *testing.T) {
	adjusted, ok := AdjustSpot(decimal.One, 18, 6)
	require.True(t, ok)
	require.Equal(t, "1000000000000", adjusted.String())

	adjusted, ok = AdjustSpot(decimal.New(5), 6, 18)
	require.True(t, ok)
	require.Equal(t, "0.000000000005", adjusted.String())

	adjusted, ok = AdjustSpot(decimal.MustParse("2.5"), 8, 8)
	require.True(t, ok)
	require.Equal(t, "2.5", adjusted.String())

	_, ok = AdjustSpot(decimal.MustParse("1000000000000000000000000000000"), 255, 0)
	require.False(t, ok)
}
