package ai

import "context"

// Sample returns canned completions. It needs no network and no key.
type Sample struct{}

const sampleCompletion = "\n\n1. Blah Blah Blah - Ke$ha \n2. Club Can't Handle Me - Flo Rida ft. David Guetta \n3. Tik Tok - Ke$ha"

const sampleVision = `1. "Holocene" by Bon Iver
2. "Skinny Love" by Bon Iver
3. "Re: Stacks" by Bon Iver
4. "Fourth of July" by Sufjan Stevens
5. "Mykonos" by Fleet Foxes
6. "White Winter Hymnal" by Fleet Foxes
7. "Take Me to Church" by Hozier
8. "Cherry Wine" by Hozier
9. "The Night We Met" by Lord Huron
10. "Ends of the Earth" by Lord Huron`

func (Sample) Complete(ctx context.Context, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return sampleCompletion, nil
}

func (Sample) DescribeImage(ctx context.Context, _ []byte, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return sampleVision, nil
}
