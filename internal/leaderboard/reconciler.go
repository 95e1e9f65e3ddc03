package leaderboard

import (
	"context"
	stderrors "errors"
	"fmt"
	"math"
	"math/big"
	"sort"
	"strings"

	"github.com/SIMPLYBOYS/tachi/internal/errors"
	"github.com/SIMPLYBOYS/tachi/internal/market"
	"github.com/SIMPLYBOYS/tachi/internal/types"
	"github.com/SIMPLYBOYS/tachi/pkg/logger"
	"golang.org/x/sync/errgroup"
)

const (
	// MaxEntries is the length of the published leaderboard.
	MaxEntries = 100
	// OffChainOnlyLimit caps profiles merged in from the datastore alone.
	OffChainOnlyLimit = 50

	defaultConcurrency = 8
)

// StatsSource is the on-chain side of the leaderboard.
type StatsSource interface {
	GetAllParticipants(ctx context.Context) ([]string, error)
	GetUserStats(ctx context.Context, user string) (*types.UserStats, error)
}

// ProfileStore is the off-chain side of the leaderboard.
type ProfileStore interface {
	GetUserByAddress(address string) (*types.UserProfile, error)
	GetUsersByAddresses(addresses []string) (map[string]types.UserProfile, error)
	GetRankedUsers(limit int) ([]types.UserProfile, error)
	GetWinnersExcluding(exclude []string, limit int) ([]types.UserProfile, error)
}

// Reconciler merges on-chain stats and off-chain profiles into one ranking.
type Reconciler struct {
	chain       StatsSource
	store       ProfileStore
	concurrency int
}

func NewReconciler(chain StatsSource, store ProfileStore) *Reconciler {
	return &Reconciler{chain: chain, store: store, concurrency: defaultConcurrency}
}

// Build computes the leaderboard. It only fails when the datastore fallback
// itself fails; on-chain problems degrade to off-chain figures.
func (r *Reconciler) Build(ctx context.Context) ([]types.LeaderboardEntry, error) {
	participants, err := r.chain.GetAllParticipants(ctx)
	if err != nil {
		logger.Warn("Failed to fetch participants, using datastore leaderboard: %v", err)
		return r.offChainRanking()
	}
	if len(participants) == 0 {
		logger.Info("No participants on chain, using datastore leaderboard")
		return r.offChainRanking()
	}

	batched := true
	profiles, err := r.store.GetUsersByAddresses(participants)
	if err != nil {
		logger.Warn("Failed to load profiles for participants, looking them up one by one: %v", err)
		batched = false
	}

	entries := r.onChainEntries(ctx, participants, func(address string) (types.UserProfile, bool) {
		if batched {
			p, ok := profiles[strings.ToLower(address)]
			return p, ok
		}
		return r.lookupProfile(address)
	})
	if len(entries) == 0 {
		return r.offChainRanking()
	}
	rank(entries)

	covered := make([]string, len(entries))
	for i, e := range entries {
		covered[i] = e.Address
	}
	extra, err := r.store.GetWinnersExcluding(covered, OffChainOnlyLimit)
	if err != nil {
		logger.Warn("Failed to load off-chain-only winners: %v", err)
	}
	for _, p := range extra {
		entries = append(entries, offChainEntry(p))
	}

	rank(entries)
	if len(entries) > MaxEntries {
		entries = entries[:MaxEntries]
	}
	return entries, nil
}

// lookupProfile reads a single profile; a missing or unreadable one counts as absent.
func (r *Reconciler) lookupProfile(address string) (types.UserProfile, bool) {
	p, err := r.store.GetUserByAddress(address)
	if err != nil {
		var notFound *errors.NotFoundError
		if !stderrors.As(err, &notFound) {
			logger.Warn("Failed to load profile for %s: %v", address, err)
		}
		return types.UserProfile{}, false
	}
	if p == nil {
		return types.UserProfile{}, false
	}
	return *p, true
}

// onChainEntries reads every participant's stats concurrently. Each slot is
// filled independently so one failing read never affects the others.
func (r *Reconciler) onChainEntries(ctx context.Context, participants []string, profileOf func(string) (types.UserProfile, bool)) []types.LeaderboardEntry {
	slots := make([]*types.LeaderboardEntry, len(participants))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, address := range participants {
		i, address := i, address
		g.Go(func() error {
			profile, hasProfile := profileOf(address)
			stats, err := r.chain.GetUserStats(gctx, address)
			if err != nil {
				logger.Warn("Failed to read stats for %s, using datastore figures: %v", address, err)
				if hasProfile && (profile.Wins > 0 || profile.Losses > 0) {
					e := offChainEntry(profile)
					slots[i] = &e
				}
				return nil
			}
			if stats.TotalBets == 0 {
				return nil
			}
			var p *types.UserProfile
			if hasProfile {
				p = &profile
			}
			e := mergeEntry(address, stats, p)
			slots[i] = &e
			return nil
		})
	}
	_ = g.Wait()

	entries := make([]types.LeaderboardEntry, 0, len(participants))
	for _, e := range slots {
		if e != nil {
			entries = append(entries, *e)
		}
	}
	return entries
}

// mergeEntry prefers chain figures when they are nonzero and falls back to the profile.
func mergeEntry(address string, stats *types.UserStats, profile *types.UserProfile) types.LeaderboardEntry {
	name := market.TruncateAddress(address)
	offWins := 0
	offWon := ""
	if profile != nil {
		name = profile.Username
		offWins = profile.Wins
		offWon = profile.MonWon
	}

	wins := offWins
	if stats.WonBets > 0 {
		wins = int(stats.WonBets)
		if offWins > 0 && offWins != wins {
			logger.Debug("Win counts disagree for %s: chain=%d datastore=%d", address, wins, offWins)
		}
	}

	var winRate int64
	switch {
	case stats.WinRate > 0:
		winRate = int64(math.Round(float64(stats.WinRate) / 100))
	case stats.TotalBets > 0:
		winRate = int64(math.Round(float64(wins) * 100 / float64(stats.TotalBets)))
	}

	totalWon := "0"
	winnings, ok := new(big.Int).SetString(stats.TotalWinnings, 10)
	switch {
	case ok && winnings.Sign() != 0:
		totalWon = market.FormatDisplayWei(winnings)
	case offWon != "":
		totalWon = market.FormatDisplayDecimal(offWon)
	}

	return types.LeaderboardEntry{
		Address:   strings.ToLower(address),
		Name:      name,
		Wins:      wins,
		WinRate:   fmt.Sprintf("%d%%", winRate),
		TotalWon:  totalWon,
		TotalBets: int(stats.TotalBets),
	}
}

func offChainEntry(p types.UserProfile) types.LeaderboardEntry {
	total := p.Wins + p.Losses
	var winRate int64
	if total > 0 {
		winRate = int64(math.Round(float64(p.Wins) * 100 / float64(total)))
	}
	return types.LeaderboardEntry{
		Address:   strings.ToLower(p.WalletAddress),
		Name:      p.Username,
		Wins:      p.Wins,
		WinRate:   fmt.Sprintf("%d%%", winRate),
		TotalWon:  market.FormatDisplayDecimal(p.MonWon),
		TotalBets: total,
	}
}

func (r *Reconciler) offChainRanking() ([]types.LeaderboardEntry, error) {
	users, err := r.store.GetRankedUsers(MaxEntries)
	if err != nil {
		return nil, err
	}
	entries := make([]types.LeaderboardEntry, len(users))
	for i, u := range users {
		entries[i] = offChainEntry(u)
		entries[i].Rank = i + 1
	}
	return entries, nil
}

// rank sorts by wins, then by amount won, and numbers entries from 1.
func rank(entries []types.LeaderboardEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Wins != entries[j].Wins {
			return entries[i].Wins > entries[j].Wins
		}
		return wonAmount(entries[i]).Cmp(wonAmount(entries[j])) > 0
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
}

func wonAmount(e types.LeaderboardEntry) *big.Rat {
	if r, ok := market.ParseDisplayAmount(e.TotalWon); ok {
		return r
	}
	return new(big.Rat)
}
