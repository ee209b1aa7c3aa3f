package program

// movement is a catalog entry. Primary movements take the progressive
// working-set count; accessories stay at a fixed set count.
type movement struct {
	name          string
	reps          string
	tempo         string
	rest          int
	primary       bool
	substitutions []string
}

/* =================================================================================
									BARBELL TIER
=================================================================================*/

var barbellUpper = []movement{
	{name: "Barbell Bench Press", reps: "6-8", tempo: "3-1-1", rest: 120, primary: true},
	{name: "Barbell Bent-Over Row", reps: "8-10", tempo: "2-1-1", rest: 90, primary: true},
	{name: "Standing Overhead Press", reps: "8-10", tempo: "2-0-1", rest: 90},
	{name: "Barbell Curl", reps: "10-12", rest: 60},
}

var barbellLower = []movement{
	{name: "Barbell Back Squat", reps: "6-8", tempo: "3-1-1", rest: 150, primary: true},
	{name: "Barbell Romanian Deadlift", reps: "8-10", tempo: "3-1-1", rest: 120, primary: true},
	{name: "Barbell Reverse Lunge", reps: "10 each leg", rest: 90},
	{name: "Barbell Hip Thrust", reps: "10-12", tempo: "2-1-1", rest: 60},
}

/* =================================================================================
									DUMBBELL TIER
=================================================================================*/

var dumbbellUpper = []movement{
	{name: "Dumbbell Bench Press", reps: "8-10", tempo: "3-1-1", rest: 90, primary: true},
	{name: "One-Arm Dumbbell Row", reps: "10-12 each side", tempo: "2-1-1", rest: 90, primary: true},
	{name: "Dumbbell Shoulder Press", reps: "10-12", tempo: "2-0-1", rest: 60},
	{name: "Dumbbell Hammer Curl", reps: "12-15", rest: 45},
}

var dumbbellLower = []movement{
	{name: "Goblet Squat", reps: "10-12", tempo: "3-1-1", rest: 90, primary: true},
	{name: "Dumbbell Romanian Deadlift", reps: "10-12", tempo: "3-1-1", rest: 90, primary: true},
	{name: "Dumbbell Reverse Lunge", reps: "10 each leg", rest: 60},
	{name: "Dumbbell Calf Raise", reps: "15-20", tempo: "2-1-1", rest: 45},
}

/* =================================================================================
									BODYWEIGHT TIER
=================================================================================*/

var bodyweightUpper = []movement{
	{name: "Push-Ups", reps: "8-15", tempo: "3-1-1", rest: 60, primary: true,
		substitutions: []string{"Incline Push-Ups", "Knee Push-Ups", "Wall Push-Ups"}},
	{name: "Pike Push-Ups", reps: "6-10", tempo: "2-1-1", rest: 60, primary: true,
		substitutions: []string{"Incline Pike Hold", "Wall Shoulder Taps"}},
	{name: "Bench Dips", reps: "10-12", tempo: "2-0-1", rest: 60,
		substitutions: []string{"Bent-Knee Chair Dips", "Floor Tricep Press"}},
	{name: "Superman Hold", reps: "30 sec", rest: 45,
		substitutions: []string{"Bird Dog", "Prone Y Raise"}},
}

var bodyweightLower = []movement{
	{name: "Bodyweight Squat", reps: "15-20", tempo: "3-1-1", rest: 60, primary: true,
		substitutions: []string{"Box Squat", "Wall Sit"}},
	{name: "Glute Bridge", reps: "15-20", tempo: "2-2-1", rest: 60, primary: true,
		substitutions: []string{"Hip Lift", "Glute Squeeze Hold"}},
	{name: "Reverse Lunge", reps: "10 each leg", rest: 60,
		substitutions: []string{"Supported Split Squat", "Step-Ups"}},
	{name: "Standing Calf Raise", reps: "20", tempo: "2-1-1", rest: 45,
		substitutions: []string{"Seated Calf Raise"}},
}

/* =================================================================================
									CIRCUITS
=================================================================================*/

var equippedCircuit = []movement{
	{name: "Dumbbell Thrusters", reps: "12", rest: 30, primary: true},
	{name: "Renegade Rows", reps: "8 each side", rest: 30, primary: true},
	{name: "Dumbbell Swings", reps: "15", rest: 30, primary: true},
	{name: "Burpees", reps: "10", rest: 30, primary: true,
		substitutions: []string{"Step-Back Burpees", "Squat Thrusts"}},
	{name: "Mountain Climbers", reps: "30 sec", rest: 60, primary: true,
		substitutions: []string{"Slow Mountain Climbers", "Plank Hold"}},
}

var bodyweightCircuit = []movement{
	{name: "Burpees", reps: "10", rest: 30, primary: true,
		substitutions: []string{"Step-Back Burpees", "Squat Thrusts"}},
	{name: "Jump Squats", reps: "15", rest: 30, primary: true,
		substitutions: []string{"Bodyweight Squats", "Half Squats"}},
	{name: "Mountain Climbers", reps: "30 sec", rest: 30, primary: true,
		substitutions: []string{"Slow Mountain Climbers", "Plank Hold"}},
	{name: "Plank Jacks", reps: "30 sec", rest: 60, primary: true,
		substitutions: []string{"Plank Hold", "Step-Out Planks"}},
}

var recoveryMovement = movement{
	name:          "Light Walk or Mobility Flow",
	reps:          "15 min",
	rest:          0,
	substitutions: []string{"Gentle Yoga", "Foam Rolling"},
}
