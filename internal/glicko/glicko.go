package glicko

import (
	"errors"
	"fmt"
	"math"
)

// Scale converts between the public Glicko rating scale and the internal
// Glicko-2 scale.
const Scale = 173.7178

const (
	DefaultRating     = 1500
	DefaultRd         = 350
	DefaultVolatility = 0.06

	DefaultTau   = 0.5
	DefaultMaxRd = 350

	convergenceTolerance = 1e-6
	maxSolverIterations  = 100
)

// ErrEmptyTeam is returned when a team rating is requested for zero members.
var ErrEmptyTeam = errors.New("team must include at least one player")

// RatingState is a player's (or combined team's) Glicko-2 state.
type RatingState struct {
	Rating     float64
	Rd         float64
	Volatility float64
}

// Opponent is one opposing result within a rating period. Score is 1 for a
// win and 0 for a loss; draws do not occur in this league.
type Opponent struct {
	Rating float64
	Rd     float64
	Score  float64
}

// Update is the result of a single-period rating update, including the
// deltas on the internal scale that go into the rating history.
type Update struct {
	RatingState
	DeltaMu    float64
	DeltaSigma float64
}

// Options tunes the update. The zero value selects the defaults.
type Options struct {
	Tau   float64
	MaxRd float64
}

func (o Options) withDefaults() Options {
	if o.Tau == 0 {
		o.Tau = DefaultTau
	}
	if o.MaxRd == 0 {
		o.MaxRd = DefaultMaxRd
	}
	return o
}

// Baseline returns the rating state every player starts from.
func Baseline() RatingState {
	return RatingState{Rating: DefaultRating, Rd: DefaultRd, Volatility: DefaultVolatility}
}

func toMu(rating float64) float64 { return (rating - DefaultRating) / Scale }

func toPhi(rd float64) float64 { return rd / Scale }

func fromMu(mu float64) float64 { return mu*Scale + DefaultRating }

func fromPhi(phi, maxRd float64) float64 { return math.Min(phi*Scale, maxRd) }

func g(phi float64) float64 {
	return 1 / math.Sqrt(1+3*phi*phi/(math.Pi*math.Pi))
}

func expectation(mu, muJ, phiJ float64) float64 {
	return 1 / (1 + math.Exp(-g(phiJ)*(mu-muJ)))
}

type opponentView struct {
	mu    float64
	phi   float64
	score float64
}

// UpdateRating performs the standard Glicko-2 single-period update for a
// player against the given opponents. With no opponents only the rating
// deviation inflates; the skill estimate is untouched.
func UpdateRating(player RatingState, opponents []Opponent, opts Options) (Update, error) {
	o := opts.withDefaults()

	mu := toMu(player.Rating)
	phi := toPhi(player.Rd)
	sigma := player.Volatility

	if len(opponents) == 0 {
		phiStar := math.Sqrt(phi*phi + sigma*sigma)
		return Update{
			RatingState: RatingState{
				Rating:     fromMu(mu),
				Rd:         fromPhi(phiStar, o.MaxRd),
				Volatility: sigma,
			},
		}, nil
	}

	views := make([]opponentView, len(opponents))
	for i, opp := range opponents {
		views[i] = opponentView{mu: toMu(opp.Rating), phi: toPhi(opp.Rd), score: opp.Score}
	}

	var vDenominator, residual float64
	for _, opp := range views {
		gPhi := g(opp.phi)
		e := expectation(mu, opp.mu, opp.phi)
		vDenominator += gPhi * gPhi * e * (1 - e)
		residual += gPhi * (opp.score - e)
	}

	v := 1 / vDenominator
	delta := v * residual

	a := math.Log(sigma * sigma)
	f := func(x float64) float64 {
		expX := math.Exp(x)
		numerator := expX * (delta*delta - phi*phi - v - expX)
		denominator := 2 * (phi*phi + v + expX) * (phi*phi + v + expX)
		return numerator/denominator - (x-a)/(o.Tau*o.Tau)
	}

	// Bracket the volatility root, stepping tau at a time below a when the
	// improvement term does not dominate.
	A := a
	var B float64
	if delta*delta > phi*phi+v {
		B = math.Log(delta*delta - phi*phi - v)
	} else {
		k := 1.0
		B = a - k*o.Tau
		for f(B) < 0 {
			k++
			B = a - k*o.Tau
		}
	}

	// Illinois variant of the secant method on x = ln(sigma^2).
	fA := f(A)
	fB := f(B)
	iterations := 0
	for math.Abs(B-A) > convergenceTolerance {
		if iterations++; iterations > maxSolverIterations {
			return Update{}, fmt.Errorf("volatility solver failed to converge after %d iterations", maxSolverIterations)
		}
		C := A + (A-B)*fA/(fB-fA)
		fC := f(C)
		if fC*fB < 0 {
			A = B
			fA = fB
		} else {
			fA = fA / 2
		}
		B = C
		fB = fC
	}

	sigmaPrime := math.Exp(A / 2)
	phiStar := math.Sqrt(phi*phi + sigmaPrime*sigmaPrime)
	phiPrime := 1 / math.Sqrt(1/(phiStar*phiStar)+1/v)
	muPrime := mu + phiPrime*phiPrime*residual

	return Update{
		RatingState: RatingState{
			Rating:     fromMu(muPrime),
			Rd:         fromPhi(phiPrime, o.MaxRd),
			Volatility: sigmaPrime,
		},
		DeltaMu:    muPrime - mu,
		DeltaSigma: sigmaPrime - sigma,
	}, nil
}

// CombineTeam folds the members' states into a single opposing-team state.
// The team mu is the mean of the members' mus; the team phi is the root mean
// square of the members' phis, halved for teams of more than one player.
// The halving is a tunable modeling choice, kept for rating compatibility.
func CombineTeam(members []RatingState) (RatingState, error) {
	if len(members) == 0 {
		return RatingState{}, ErrEmptyTeam
	}

	var muSum, varianceSum, volatilitySum float64
	for _, member := range members {
		phi := toPhi(member.Rd)
		muSum += toMu(member.Rating)
		varianceSum += phi * phi
		volatilitySum += member.Volatility
	}

	n := float64(len(members))
	phiTeam := math.Sqrt(varianceSum / n)
	if len(members) > 1 {
		phiTeam /= 2
	}

	return RatingState{
		Rating:     fromMu(muSum / n),
		Rd:         fromPhi(phiTeam, DefaultMaxRd),
		Volatility: volatilitySum / n,
	}, nil
}

// InflateRd applies only the deviation-inflation step of the update,
// simulating the given number of idle rating periods. Rating is untouched.
func InflateRd(player RatingState, periods int, maxRd float64) RatingState {
	if maxRd == 0 {
		maxRd = DefaultMaxRd
	}
	phi := toPhi(player.Rd)
	sigma := player.Volatility
	inflated := math.Sqrt(phi*phi + sigma*sigma*float64(periods))
	return RatingState{
		Rating:     player.Rating,
		Rd:         fromPhi(inflated, maxRd),
		Volatility: player.Volatility,
	}
}
