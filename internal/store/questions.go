package store

// DefaultBank is the built-in question set used to seed an empty store at
// startup, so a fresh deployment is playable without any data loading step.
var DefaultBank = []Question{
	{
		Prompt:  "What is the capital of Australia?",
		Options: []string{"Sydney", "Melbourne", "Canberra", "Perth"},
		Answer:  "Canberra",
	},
	{
		Prompt:  "Which planet has the most moons?",
		Options: []string{"Jupiter", "Saturn", "Uranus", "Neptune"},
		Answer:  "Saturn",
	},
	{
		Prompt:  "What year did the first Moon landing take place?",
		Options: []string{"1965", "1967", "1969", "1971"},
		Answer:  "1969",
	},
	{
		Prompt:  "Which element has the chemical symbol 'Au'?",
		Options: []string{"Silver", "Gold", "Aluminium", "Argon"},
		Answer:  "Gold",
	},
	{
		Prompt:  "Who painted the Mona Lisa?",
		Options: []string{"Michelangelo", "Raphael", "Leonardo da Vinci", "Donatello"},
		Answer:  "Leonardo da Vinci",
	},
	{
		Prompt:  "What is the largest ocean on Earth?",
		Options: []string{"Atlantic", "Indian", "Arctic", "Pacific"},
		Answer:  "Pacific",
	},
	{
		Prompt:  "How many sides does a hexagon have?",
		Options: []string{"5", "6", "7", "8"},
		Answer:  "6",
	},
	{
		Prompt:  "Which country invented paper?",
		Options: []string{"Egypt", "Greece", "China", "India"},
		Answer:  "China",
	},
	{
		Prompt:  "What is the smallest prime number?",
		Options: []string{"0", "1", "2", "3"},
		Answer:  "2",
	},
	{
		Prompt:  "Which gas do plants absorb from the atmosphere?",
		Options: []string{"Oxygen", "Nitrogen", "Carbon dioxide", "Hydrogen"},
		Answer:  "Carbon dioxide",
	},
	{
		Prompt:  "In which sport would you perform a slam dunk?",
		Options: []string{"Volleyball", "Basketball", "Tennis", "Handball"},
		Answer:  "Basketball",
	},
	{
		Prompt:  "What is the longest river in the world?",
		Options: []string{"Amazon", "Nile", "Yangtze", "Mississippi"},
		Answer:  "Nile",
	},
}
