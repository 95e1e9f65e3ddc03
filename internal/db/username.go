package db

import (
	"fmt"
	"math/rand"
	"sync"
	"time"
)

var usernamePrefixes = []string{
	"ALPHA", "BETA", "GAMMA", "OMEGA", "SIGMA", "DELTA", "ZETA", "THETA",
	"PREDICTION", "ORACLE", "PROPHET", "SEER", "VISION", "INSIGHT",
	"MONAD", "CHAIN", "CRYPTO", "BLOCK", "WEB3", "DEFI",
	"FORTUNE", "LUCK", "CHANCE", "ODDS", "BET", "WAGER",
	"MASTER", "LEGEND", "KING", "QUEEN", "CHAMP", "HERO",
	"NINJA", "SAMURAI", "WARRIOR", "KNIGHT", "GUARDIAN", "SENTINEL",
	"PHOENIX", "DRAGON", "TIGER", "WOLF", "EAGLE", "SHARK",
	"NEBULA", "STELLAR", "COSMIC", "VOID", "NOVA", "STAR",
	"TURBO", "RAPID", "SWIFT", "BLAZE", "STORM", "THUNDER",
	"QUANTUM", "ATOMIC", "NUCLEAR", "FUSION", "POWER", "ENERGY",
}

var usernameSuffixes = []string{
	"BETTOR", "ORACLE", "PRO", "MASTER", "LEGEND", "KING", "QUEEN",
	"CHAMP", "HERO", "NINJA", "SAGE", "WIZARD", "MAGE", "ARCHER",
	"KNIGHT", "WARRIOR", "GUARDIAN", "SENTINEL", "PILOT", "CAPTAIN",
	"COMMANDER", "GENERAL", "ADMIRAL", "CHIEF", "BOSS", "LEADER",
	"ELITE", "EXPERT", "SPECIALIST", "VETERAN", "CHAMPION",
	"PHOENIX", "DRAGON", "TIGER", "WOLF", "EAGLE", "SHARK", "LION",
	"NEBULA", "STAR", "NOVA", "VOID", "COSMOS", "GALAXY",
	"BOLT", "FLASH", "STORM", "THUNDER", "BLAZE", "FIRE",
	"GENESIS", "ALPHA", "BETA", "OMEGA", "SIGMA", "DELTA",
}

var usernameSeparators = []string{"_", ""}

const usernameAttempts = 10

// UsernameGenerator produces display names like ORACLE_NINJA.
type UsernameGenerator struct {
	mu   sync.Mutex
	rand *rand.Rand
	now  func() time.Time
}

// NewUsernameGenerator uses src for randomness, or a time-seeded source when src is nil.
func NewUsernameGenerator(src rand.Source) *UsernameGenerator {
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	return &UsernameGenerator{rand: rand.New(src), now: time.Now}
}

func (g *UsernameGenerator) intn(n int) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rand.Intn(n)
}

func (g *UsernameGenerator) Generate() string {
	prefix := usernamePrefixes[g.intn(len(usernamePrefixes))]
	suffix := usernameSuffixes[g.intn(len(usernameSuffixes))]
	separator := usernameSeparators[g.intn(len(usernameSeparators))]
	return prefix + separator + suffix
}

// GenerateUnique tries a handful of plain names, then a numbered one, and
// finally a timestamped one that is not checked again.
func (g *UsernameGenerator) GenerateUnique(exists func(string) (bool, error)) (string, error) {
	for i := 0; i < usernameAttempts; i++ {
		name := g.Generate()
		taken, err := exists(name)
		if err != nil {
			return "", err
		}
		if !taken {
			return name, nil
		}
	}

	base := g.Generate()
	numbered := fmt.Sprintf("%s_%d", base, g.intn(10000))
	taken, err := exists(numbered)
	if err != nil {
		return "", err
	}
	if !taken {
		return numbered, nil
	}
	return fmt.Sprintf("%s_%d", base, g.now().UnixMilli()), nil
}
